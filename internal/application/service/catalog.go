package service

import "context"

// CatalogItem is one entry of an upstream listing, already reshaped to
// our field names with absolute image URLs.
type CatalogItem struct {
	ID               int64    `json:"id"`
	MediaType        string   `json:"mediaType"`
	Title            string   `json:"title,omitempty"`
	Name             string   `json:"name,omitempty"`
	OriginalTitle    string   `json:"originalTitle,omitempty"`
	OriginalName     string   `json:"originalName,omitempty"`
	OriginalLanguage string   `json:"originalLanguage"`
	OriginCountry    []string `json:"originCountry,omitempty"`
	Overview         string   `json:"overview"`
	Adult            bool     `json:"adult"`
	Video            bool     `json:"video,omitempty"`
	GenreIDs         []int64  `json:"genreIds"`
	PosterPath       *string  `json:"posterPath"`
	BackdropPath     *string  `json:"backdropPath"`
	ReleaseDate      string   `json:"releaseDate,omitempty"`
	FirstAirDate     string   `json:"firstAirDate,omitempty"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"voteAverage"`
	VoteCount        int64    `json:"voteCount"`
}

// CatalogPage is one bounded page of an upstream listing plus the
// upstream's own pagination numbers.
type CatalogPage struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"totalPages"`
	TotalResults int           `json:"totalResults"`
	Results      []CatalogItem `json:"results"`
}

// CatalogClient is the upstream media catalog. Search and discovery stay
// upstream; this API only passes listings through and layers favorite
// state on top.
type CatalogClient interface {
	Trending(ctx context.Context, trendingType, timeWindow string, page int) (*CatalogPage, error)
}
