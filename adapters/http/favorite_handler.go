package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	favoriteUC "github.com/nkduy/cinevault/internal/application/usecase/favorite"
	"github.com/nkduy/cinevault/internal/domain/favorite"
	"github.com/nkduy/cinevault/pkg/apperror"
)

type FavoriteHandler struct {
	favoriteUseCase *favoriteUC.FavoriteUseCase
}

func NewFavoriteHandler(uc *favoriteUC.FavoriteUseCase) *FavoriteHandler {
	return &FavoriteHandler{favoriteUseCase: uc}
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		abortWithError(c, apperror.NewAuth("Access token is required", string(LocationHeaders)))
		return
	}

	body := Validated[AddFavoriteRequest](c, LocationBody)

	stored, _, err := h.favoriteUseCase.Add(c.Request.Context(), favoriteUC.AddFavoriteInput{
		UserID:           userID,
		MediaID:          body.MediaID,
		MediaType:        favorite.MediaType(body.MediaType),
		MediaTitle:       body.MediaTitle,
		MediaPoster:      body.MediaPoster,
		MediaReleaseDate: body.MediaReleaseDate,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Favorite added successful",
		"data":    ToFavoriteDTO(stored),
	})
}

func (h *FavoriteHandler) GetMyFavorites(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		abortWithError(c, apperror.NewAuth("Access token is required", string(LocationHeaders)))
		return
	}

	query := Validated[GetMyFavoritesQuery](c, LocationQuery)

	out, err := h.favoriteUseCase.ListMine(c.Request.Context(), favoriteUC.ListMineInput{
		UserID: userID,
		Cursor: query.Cursor,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	dtos := make([]MyFavoriteDTO, len(out.Favorites))
	for i, f := range out.Favorites {
		dtos[i] = ToMyFavoriteDTO(f)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Get favorites successful",
		"data":    dtos,
		"pagination": gin.H{
			"hasNextPage": out.HasNextPage,
			"nextCursor":  out.NextCursor,
			"count":       len(dtos),
		},
	})
}

func (h *FavoriteHandler) DeleteFavoriteByID(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		abortWithError(c, apperror.NewAuth("Access token is required", string(LocationHeaders)))
		return
	}

	params := Validated[DeleteFavoriteByIDParams](c, LocationParams)

	if err := h.favoriteUseCase.DeleteByID(c.Request.Context(), params.FavoriteID, userID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delete favorite by id successful"})
}

func (h *FavoriteHandler) DeleteFavoriteByMedia(c *gin.Context) {
	userID, ok := UserIDFromContext(c)
	if !ok {
		abortWithError(c, apperror.NewAuth("Access token is required", string(LocationHeaders)))
		return
	}

	params := Validated[DeleteFavoriteByMediaParams](c, LocationParams)

	err := h.favoriteUseCase.DeleteByMedia(c.Request.Context(), userID, params.MediaID, favorite.MediaType(params.MediaType))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Delete favorite by media successful"})
}
