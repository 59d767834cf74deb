package http

import (
	"time"

	"github.com/nkduy/cinevault/internal/application/service"
	"github.com/nkduy/cinevault/internal/domain/favorite"
)

// Favorite request sections

type AddFavoriteRequest struct {
	MediaID          int64   `json:"mediaId" binding:"required"`
	MediaTitle       string  `json:"mediaTitle" binding:"required"`
	MediaType        string  `json:"mediaType" binding:"required,oneof=movie tv"`
	MediaPoster      *string `json:"mediaPoster"`
	MediaReleaseDate string  `json:"mediaReleaseDate" binding:"required"`
}

type GetMyFavoritesQuery struct {
	// Cursor is the id of the last favorite on the previous page.
	Cursor *int64 `form:"cursor" binding:"omitempty,min=1"`
}

type DeleteFavoriteByIDParams struct {
	FavoriteID int64 `uri:"favoriteId" binding:"required,min=1"`
}

type DeleteFavoriteByMediaParams struct {
	MediaID   int64  `uri:"mediaId" binding:"required,min=1"`
	MediaType string `uri:"mediaType" binding:"required,oneof=movie tv"`
}

// Trending request sections

type TrendingParams struct {
	TrendingType string `uri:"trendingType" binding:"required,oneof=all movie tv"`
	TimeWindow   string `uri:"timeWindow" binding:"required,oneof=day week"`
}

type TrendingQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
}

// Favorite response DTOs

type FavoriteDTO struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"userId"`
	MediaID          int64     `json:"mediaId"`
	MediaType        string    `json:"mediaType"`
	MediaTitle       string    `json:"mediaTitle"`
	MediaPoster      *string   `json:"mediaPoster"`
	MediaReleaseDate string    `json:"mediaReleaseDate"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MyFavoriteDTO is FavoriteDTO without the owner: the listing endpoint
// only ever returns the caller's own records.
type MyFavoriteDTO struct {
	ID               int64     `json:"id"`
	MediaID          int64     `json:"mediaId"`
	MediaType        string    `json:"mediaType"`
	MediaTitle       string    `json:"mediaTitle"`
	MediaPoster      *string   `json:"mediaPoster"`
	MediaReleaseDate string    `json:"mediaReleaseDate"`
	CreatedAt        time.Time `json:"createdAt"`
}

func ToFavoriteDTO(f *favorite.Favorite) FavoriteDTO {
	return FavoriteDTO{
		ID:               f.ID,
		UserID:           f.UserID.String(),
		MediaID:          f.MediaID,
		MediaType:        string(f.MediaType),
		MediaTitle:       f.MediaTitle,
		MediaPoster:      f.MediaPoster,
		MediaReleaseDate: f.MediaReleaseDate,
		CreatedAt:        f.CreatedAt,
	}
}

func ToMyFavoriteDTO(f *favorite.Favorite) MyFavoriteDTO {
	return MyFavoriteDTO{
		ID:               f.ID,
		MediaID:          f.MediaID,
		MediaType:        string(f.MediaType),
		MediaTitle:       f.MediaTitle,
		MediaPoster:      f.MediaPoster,
		MediaReleaseDate: f.MediaReleaseDate,
		CreatedAt:        f.CreatedAt,
	}
}

// Trending response DTOs

// TrendingItemDTO adds the per-request favorite flag to a catalog item.
// IsFavorite is tri-state: true/false for identified callers, null when
// the caller identity is unknown.
type TrendingItemDTO struct {
	service.CatalogItem
	IsFavorite *bool `json:"isFavorite"`
}

type PaginationDTO struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	Count       int `json:"count"`
}

func ToTrendingItemDTO(item service.CatalogItem, status map[int64][]favorite.MediaType, authenticated bool) TrendingItemDTO {
	dto := TrendingItemDTO{CatalogItem: item}
	if !authenticated {
		return dto
	}

	isFavorite := false
	for _, mediaType := range status[item.ID] {
		if string(mediaType) == item.MediaType {
			isFavorite = true
			break
		}
	}
	dto.IsFavorite = &isFavorite
	return dto
}
