package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	trendingUC "github.com/nkduy/cinevault/internal/application/usecase/trending"
)

type TrendingHandler struct {
	trendingUseCase *trendingUC.TrendingUseCase
}

func NewTrendingHandler(uc *trendingUC.TrendingUseCase) *TrendingHandler {
	return &TrendingHandler{trendingUseCase: uc}
}

// GetTrending serves both anonymous and authenticated callers: the gate
// in front of it runs in optional mode, and the favorite flag is only
// resolved when an identity was attached.
func (h *TrendingHandler) GetTrending(c *gin.Context) {
	params := Validated[TrendingParams](c, LocationParams)
	query := Validated[TrendingQuery](c, LocationQuery)

	var userID *uuid.UUID
	if id, ok := UserIDFromContext(c); ok {
		userID = &id
	}

	out, err := h.trendingUseCase.Execute(c.Request.Context(), trendingUC.TrendingInput{
		TrendingType: params.TrendingType,
		TimeWindow:   params.TimeWindow,
		Page:         query.Page,
		UserID:       userID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	items := make([]TrendingItemDTO, len(out.Page.Results))
	for i, item := range out.Page.Results {
		items[i] = ToTrendingItemDTO(item, out.Status, userID != nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Get trending list successfully",
		"data":    items,
		"pagination": PaginationDTO{
			CurrentPage: out.Page.Page,
			TotalPages:  out.Page.TotalPages,
			Count:       out.Page.TotalResults,
		},
	})
}
