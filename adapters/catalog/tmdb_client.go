// Package catalog talks to the upstream TMDB catalog. Listings are
// reshaped into service.CatalogPage at this boundary: snake_case fields
// renamed, relative image paths resolved to absolute URLs.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nkduy/cinevault/internal/application/service"
	"github.com/nkduy/cinevault/internal/config"
)

const (
	posterSize   = "w500"
	backdropSize = "w1280"
)

type TMDBClient struct {
	baseURL      string
	apiKey       string
	imageBaseURL string
	httpClient   *http.Client
}

func NewTMDBClient(cfg config.Config) *TMDBClient {
	return &TMDBClient{
		baseURL:      cfg.TMDB.BaseURL,
		apiKey:       cfg.TMDB.APIKey,
		imageBaseURL: cfg.TMDB.ImageBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type tmdbListItem struct {
	ID               int64    `json:"id"`
	MediaType        string   `json:"media_type"`
	Title            string   `json:"title"`
	Name             string   `json:"name"`
	OriginalTitle    string   `json:"original_title"`
	OriginalName     string   `json:"original_name"`
	OriginalLanguage string   `json:"original_language"`
	OriginCountry    []string `json:"origin_country"`
	Overview         string   `json:"overview"`
	Adult            bool     `json:"adult"`
	Video            bool     `json:"video"`
	GenreIDs         []int64  `json:"genre_ids"`
	PosterPath       *string  `json:"poster_path"`
	BackdropPath     *string  `json:"backdrop_path"`
	ReleaseDate      string   `json:"release_date"`
	FirstAirDate     string   `json:"first_air_date"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int64    `json:"vote_count"`
}

type tmdbListResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []tmdbListItem `json:"results"`
}

func (c *TMDBClient) Trending(ctx context.Context, trendingType, timeWindow string, page int) (*service.CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/trending/%s/%s", c.baseURL, url.PathEscape(trendingType), url.PathEscape(timeWindow))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build trending request: %w", err)
	}
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trending request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream catalog returned status %d", resp.StatusCode)
	}

	var body tmdbListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode trending response: %w", err)
	}

	out := &service.CatalogPage{
		Page:         body.Page,
		TotalPages:   body.TotalPages,
		TotalResults: body.TotalResults,
		Results:      make([]service.CatalogItem, len(body.Results)),
	}
	for i, item := range body.Results {
		mediaType := item.MediaType
		if mediaType == "" {
			// trending/movie and trending/tv responses omit media_type
			mediaType = trendingType
		}
		out.Results[i] = service.CatalogItem{
			ID:               item.ID,
			MediaType:        mediaType,
			Title:            item.Title,
			Name:             item.Name,
			OriginalTitle:    item.OriginalTitle,
			OriginalName:     item.OriginalName,
			OriginalLanguage: item.OriginalLanguage,
			OriginCountry:    item.OriginCountry,
			Overview:         item.Overview,
			Adult:            item.Adult,
			Video:            item.Video,
			GenreIDs:         item.GenreIDs,
			PosterPath:       c.imageURL(item.PosterPath, posterSize),
			BackdropPath:     c.imageURL(item.BackdropPath, backdropSize),
			ReleaseDate:      item.ReleaseDate,
			FirstAirDate:     item.FirstAirDate,
			Popularity:       item.Popularity,
			VoteAverage:      item.VoteAverage,
			VoteCount:        item.VoteCount,
		}
	}
	return out, nil
}

func (c *TMDBClient) imageURL(path *string, size string) *string {
	if path == nil || *path == "" {
		return nil
	}
	full := c.imageBaseURL + "/" + size + *path
	return &full
}
