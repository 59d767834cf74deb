package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaRef identifies one item in the upstream catalog's namespace.
type MediaRef struct {
	MediaID   int64
	MediaType MediaType
}

// Favorite marks one catalog item as favorited by one user. Records are
// immutable after creation; the only mutation path is delete. The media
// title, poster and release date are denormalized at creation time so
// listing favorites needs no catalog round-trip.
type Favorite struct {
	ID               int64     `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	MediaID          int64     `json:"mediaId"`
	MediaType        MediaType `json:"mediaType"`
	MediaTitle       string    `json:"mediaTitle"`
	MediaPoster      *string   `json:"mediaPoster"`
	MediaReleaseDate string    `json:"mediaReleaseDate"`
	CreatedAt        time.Time `json:"createdAt"`
}

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrInvalidMediaType = errors.New("media type must be 'movie' or 'tv'")
)

func (f *Favorite) Validate() error {
	if !f.MediaType.Valid() {
		return ErrInvalidMediaType
	}
	return nil
}

// Repository is the persistence contract for favorites. Upsert and the
// deletes must be single atomic statements: a check-then-write sequence
// would race under concurrent duplicate submissions.
type Repository interface {
	// Upsert inserts the favorite or returns the existing record for the
	// same (userID, mediaID) pair. The second result reports whether this
	// call created the record. The conflict key does not include the
	// media type, so a movie and a TV show sharing a numeric id resolve
	// to the same favorite.
	Upsert(ctx context.Context, f *Favorite) (*Favorite, bool, error)

	// FindByMedia returns ErrFavoriteNotFound when no record matches.
	FindByMedia(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType MediaType) (*Favorite, error)

	// ListByUser returns up to limit favorites owned by userID ordered by
	// creation time descending. When beforeID is set only records with a
	// smaller id are eligible.
	ListByUser(ctx context.Context, userID uuid.UUID, beforeID *int64, limit int) ([]*Favorite, error)

	// DeleteByID removes the favorite matching both id and owner and
	// reports the number of rows removed.
	DeleteByID(ctx context.Context, id int64, userID uuid.UUID) (int64, error)

	// DeleteByMedia is DeleteByID keyed by the natural media identity.
	DeleteByMedia(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType MediaType) (int64, error)

	// FindByMediaBatch returns, in a single query, the subset of refs the
	// user has favorited.
	FindByMediaBatch(ctx context.Context, userID uuid.UUID, refs []MediaRef) ([]MediaRef, error)
}
