package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nkduy/cinevault/internal/application/service"
	favoriteUC "github.com/nkduy/cinevault/internal/application/usecase/favorite"
	"github.com/nkduy/cinevault/internal/domain/favorite"
	"github.com/nkduy/cinevault/pkg/logger"
)

// TrendingUseCase passes one upstream trending page through, caches the
// raw upstream payload in Redis and annotates each item with the
// caller's favorite state when an identity is present.
type TrendingUseCase struct {
	catalog   service.CatalogClient
	favorites *favoriteUC.FavoriteUseCase
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    logger.Logger
}

func NewTrendingUseCase(catalog service.CatalogClient, favorites *favoriteUC.FavoriteUseCase, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *TrendingUseCase {
	return &TrendingUseCase{
		catalog:   catalog,
		favorites: favorites,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

type TrendingInput struct {
	TrendingType string
	TimeWindow   string
	Page         int
	// UserID is nil for anonymous callers; their items carry no favorite
	// state rather than a false one.
	UserID *uuid.UUID
}

type TrendingOutput struct {
	Page *service.CatalogPage
	// Status maps media id to the media types the caller has favorited.
	Status map[int64][]favorite.MediaType
}

func (uc *TrendingUseCase) Execute(ctx context.Context, input TrendingInput) (*TrendingOutput, error) {
	page, err := uc.fetchPage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get trending list failed: %w", err)
	}

	refs := make([]favorite.MediaRef, len(page.Results))
	for i, item := range page.Results {
		refs[i] = favorite.MediaRef{MediaID: item.ID, MediaType: favorite.MediaType(item.MediaType)}
	}

	statusMap, err := uc.favorites.MediaStatusMap(ctx, refs, input.UserID)
	if err != nil {
		return nil, err
	}

	return &TrendingOutput{Page: page, Status: statusMap}, nil
}

// fetchPage serves the upstream page from Redis when possible. Cache
// failures degrade to a direct upstream call.
func (uc *TrendingUseCase) fetchPage(ctx context.Context, input TrendingInput) (*service.CatalogPage, error) {
	key := fmt.Sprintf("trending:%s:%s:%d", input.TrendingType, input.TimeWindow, input.Page)

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, key).Bytes()
		if err == nil {
			var page service.CatalogPage
			if err := json.Unmarshal(cached, &page); err == nil {
				return &page, nil
			}
			uc.logger.Warn("Corrupt trending cache entry, refetching", zap.String("key", key))
		}
	}

	page, err := uc.catalog.Trending(ctx, input.TrendingType, input.TimeWindow, input.Page)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(page); err == nil {
			if err := uc.cache.Set(ctx, key, raw, uc.cacheTTL).Err(); err != nil {
				uc.logger.Warn("Failed to cache trending page", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return page, nil
}
