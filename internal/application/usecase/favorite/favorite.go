package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/nkduy/cinevault/adapters/event"
	"github.com/nkduy/cinevault/internal/domain/favorite"
	"github.com/nkduy/cinevault/pkg/apperror"
	"github.com/nkduy/cinevault/pkg/logger"
)

var tracer = otel.Tracer("favorite_usecase")

// FavoriteUseCase guarantees idempotent adds, ownership-scoped deletes
// and consistent paginated reads over the favorites store.
type FavoriteUseCase struct {
	repo     favorite.Repository
	events   *event.KafkaProducerClient
	pageSize int
	logger   logger.Logger
}

func NewFavoriteUseCase(repo favorite.Repository, events *event.KafkaProducerClient, pageSize int, log logger.Logger) *FavoriteUseCase {
	return &FavoriteUseCase{
		repo:     repo,
		events:   events,
		pageSize: pageSize,
		logger:   log,
	}
}

type AddFavoriteInput struct {
	UserID           uuid.UUID
	MediaID          int64
	MediaType        favorite.MediaType
	MediaTitle       string
	MediaPoster      *string
	MediaReleaseDate string
}

// Add stores the favorite or returns the caller's existing record for
// the same media id. The second result reports whether this call created
// the record. Idempotency rests on the store's atomic upsert, not on a
// read-then-write sequence.
func (uc *FavoriteUseCase) Add(ctx context.Context, input AddFavoriteInput) (*favorite.Favorite, bool, error) {
	ctx, span := tracer.Start(ctx, "Add")
	defer span.End()

	f := &favorite.Favorite{
		UserID:           input.UserID,
		MediaID:          input.MediaID,
		MediaType:        input.MediaType,
		MediaTitle:       input.MediaTitle,
		MediaPoster:      input.MediaPoster,
		MediaReleaseDate: input.MediaReleaseDate,
		CreatedAt:        time.Now().UTC(),
	}
	if err := f.Validate(); err != nil {
		return nil, false, apperror.NewEntity([]apperror.FieldError{{
			Code:     "invalid_enum_value",
			Message:  err.Error(),
			Path:     "mediaType",
			Location: "body",
		}})
	}

	stored, created, err := uc.repo.Upsert(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}
	span.SetAttributes(attribute.Bool("created", created))

	if created {
		uc.publish(event.FavoriteEventPayload{
			EventType:  event.FavoriteEventTypeAdded,
			FavoriteID: stored.ID,
			UserID:     stored.UserID,
			MediaID:    stored.MediaID,
			MediaType:  string(stored.MediaType),
		})
	}

	return stored, created, nil
}

type ListMineInput struct {
	UserID uuid.UUID
	// Cursor is the id of the last favorite of the previous page; only
	// records with a smaller id are eligible.
	Cursor *int64
}

type ListMineOutput struct {
	Favorites   []*favorite.Favorite
	HasNextPage bool
	NextCursor  *int64
}

// ListMine returns one page of the caller's favorites, newest first. It
// probes one record past the page size to decide HasNextPage. Pagination
// offers no snapshot isolation: concurrent inserts and deletes between
// two page fetches may shift records across page boundaries.
func (uc *FavoriteUseCase) ListMine(ctx context.Context, input ListMineInput) (*ListMineOutput, error) {
	records, err := uc.repo.ListByUser(ctx, input.UserID, input.Cursor, uc.pageSize+1)
	if err != nil {
		return nil, err
	}

	out := &ListMineOutput{Favorites: records}
	if len(records) > uc.pageSize {
		out.Favorites = records[:uc.pageSize]
		out.HasNextPage = true
		last := out.Favorites[len(out.Favorites)-1].ID
		out.NextCursor = &last
	}

	return out, nil
}

// Get is a point lookup. Absence is not an error; callers decide whether
// it is meaningful.
func (uc *FavoriteUseCase) Get(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (*favorite.Favorite, error) {
	f, err := uc.repo.FindByMedia(ctx, userID, mediaID, mediaType)
	if err != nil {
		if errors.Is(err, favorite.ErrFavoriteNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

func (uc *FavoriteUseCase) IsFavorite(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (bool, error) {
	f, err := uc.Get(ctx, userID, mediaID, mediaType)
	if err != nil {
		return false, err
	}
	return f != nil, nil
}

// DeleteByID removes the caller's favorite. A favorite that does not
// exist and one owned by someone else produce the same NotFound, so the
// endpoint cannot be used to probe for other users' data.
func (uc *FavoriteUseCase) DeleteByID(ctx context.Context, favoriteID int64, userID uuid.UUID) error {
	deleted, err := uc.repo.DeleteByID(ctx, favoriteID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NewNotFound("Favorite not found or does not belong to you.")
	}

	uc.publish(event.FavoriteEventPayload{
		EventType:  event.FavoriteEventTypeRemoved,
		FavoriteID: favoriteID,
		UserID:     userID,
	})
	return nil
}

// DeleteByMedia is DeleteByID keyed by the natural media identity.
func (uc *FavoriteUseCase) DeleteByMedia(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) error {
	deleted, err := uc.repo.DeleteByMedia(ctx, userID, mediaID, mediaType)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NewNotFound("Favorite not found or does not belong to you.")
	}

	uc.publish(event.FavoriteEventPayload{
		EventType:  event.FavoriteEventTypeRemoved,
		UserID:     userID,
		MediaID:    mediaID,
		MediaType:  string(mediaType),
	})
	return nil
}

// MediaStatusMap answers "which of these listed items has the caller
// favorited" with one batched store query. A nil userID returns an empty
// map without touching the store; callers render that as unknown, not as
// false.
func (uc *FavoriteUseCase) MediaStatusMap(ctx context.Context, refs []favorite.MediaRef, userID *uuid.UUID) (map[int64][]favorite.MediaType, error) {
	statusMap := make(map[int64][]favorite.MediaType)
	if userID == nil || len(refs) == 0 {
		return statusMap, nil
	}

	matches, err := uc.repo.FindByMediaBatch(ctx, *userID, refs)
	if err != nil {
		return nil, err
	}

	for _, m := range matches {
		statusMap[m.MediaID] = append(statusMap[m.MediaID], m.MediaType)
	}
	return statusMap, nil
}

// publish sends the favorite event in the background; delivery failures
// are logged and never surfaced to the request.
func (uc *FavoriteUseCase) publish(payload event.FavoriteEventPayload) {
	if uc.events == nil {
		return
	}
	go func() {
		if err := uc.events.PublishFavoriteEvent(context.Background(), payload); err != nil {
			uc.logger.Warn("Failed to publish favorite event",
				zap.String("event_type", string(payload.EventType)),
				zap.String("user_id", payload.UserID.String()),
				zap.Error(err))
		}
	}()
}
