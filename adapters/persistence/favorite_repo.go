package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkduy/cinevault/internal/domain/favorite"
)

type postgresFavoriteRepo struct {
	db *pgxpool.Pool
}

func NewPostgresFavoriteRepo(db *pgxpool.Pool) favorite.Repository {
	return &postgresFavoriteRepo{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const favoriteColumns = "id, user_id, media_id, media_type, media_title, media_poster, media_release_date, created_at"

func scanFavorite(row pgx.Row) (*favorite.Favorite, error) {
	f := &favorite.Favorite{}
	var poster sql.NullString

	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.MediaID,
		&f.MediaType,
		&f.MediaTitle,
		&poster,
		&f.MediaReleaseDate,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, favorite.ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("failed to scan favorite row: %w", err)
	}

	if poster.Valid {
		f.MediaPoster = &poster.String
	}
	return f, nil
}

// Upsert is a single conditional insert; two concurrent calls for the
// same (user_id, media_id) resolve to one row and exactly one of them
// observes created=true. The `xmax = 0` check distinguishes a fresh
// insert from a row touched by the conflict branch. The conflict target
// matches the unique index and does not include media_type.
func (r *postgresFavoriteRepo) Upsert(ctx context.Context, f *favorite.Favorite) (*favorite.Favorite, bool, error) {
	query := `
		INSERT INTO favorites (user_id, media_id, media_type, media_title, media_poster, media_release_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, media_id) DO UPDATE SET media_id = EXCLUDED.media_id
		RETURNING ` + favoriteColumns + `, (xmax = 0) AS inserted
	`

	stored := &favorite.Favorite{}
	var poster sql.NullString
	var inserted bool

	err := r.db.QueryRow(ctx, query,
		f.UserID, f.MediaID, f.MediaType, f.MediaTitle, f.MediaPoster, f.MediaReleaseDate, f.CreatedAt,
	).Scan(
		&stored.ID,
		&stored.UserID,
		&stored.MediaID,
		&stored.MediaType,
		&stored.MediaTitle,
		&poster,
		&stored.MediaReleaseDate,
		&stored.CreatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert favorite: %w", err)
	}

	if poster.Valid {
		stored.MediaPoster = &poster.String
	}
	return stored, inserted, nil
}

func (r *postgresFavoriteRepo) FindByMedia(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (*favorite.Favorite, error) {
	query, args, err := psql.
		Select(favoriteColumns).
		From("favorites").
		Where(sq.Eq{"user_id": userID, "media_id": mediaID, "media_type": mediaType}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build favorite lookup query: %w", err)
	}

	return scanFavorite(r.db.QueryRow(ctx, query, args...))
}

// ListByUser sorts by creation time but bounds the page by id: favorite
// ids are assigned sequentially, so both orderings agree unless rows
// were backfilled out of order.
func (r *postgresFavoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID, beforeID *int64, limit int) ([]*favorite.Favorite, error) {
	builder := psql.
		Select(favoriteColumns).
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	if beforeID != nil {
		builder = builder.Where(sq.Lt{"id": *beforeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build favorite list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]*favorite.Favorite, 0)
	for rows.Next() {
		f := &favorite.Favorite{}
		var poster sql.NullString

		if err := rows.Scan(
			&f.ID, &f.UserID, &f.MediaID, &f.MediaType,
			&f.MediaTitle, &poster, &f.MediaReleaseDate, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row during iteration: %w", err)
		}
		if poster.Valid {
			f.MediaPoster = &poster.String
		}
		favorites = append(favorites, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return favorites, nil
}

// DeleteByID matches on id and owner in one statement so the ownership
// check and the removal cannot race.
func (r *postgresFavoriteRepo) DeleteByID(ctx context.Context, id int64, userID uuid.UUID) (int64, error) {
	query, args, err := psql.
		Delete("favorites").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build favorite delete query: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *postgresFavoriteRepo) DeleteByMedia(ctx context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (int64, error) {
	query, args, err := psql.
		Delete("favorites").
		Where(sq.Eq{"user_id": userID, "media_id": mediaID, "media_type": mediaType}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build favorite delete query: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return ct.RowsAffected(), nil
}

// FindByMediaBatch answers membership for a whole listing in one query.
func (r *postgresFavoriteRepo) FindByMediaBatch(ctx context.Context, userID uuid.UUID, refs []favorite.MediaRef) ([]favorite.MediaRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	match := make(sq.Or, len(refs))
	for i, ref := range refs {
		match[i] = sq.Eq{"media_id": ref.MediaID, "media_type": ref.MediaType}
	}

	query, args, err := psql.
		Select("media_id", "media_type").
		From("favorites").
		Where(sq.Eq{"user_id": userID}).
		Where(match).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build favorite batch query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run favorite batch query: %w", err)
	}
	defer rows.Close()

	matches := make([]favorite.MediaRef, 0, len(refs))
	for rows.Next() {
		var ref favorite.MediaRef
		if err := rows.Scan(&ref.MediaID, &ref.MediaType); err != nil {
			return nil, fmt.Errorf("failed to scan favorite batch row: %w", err)
		}
		matches = append(matches, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite batch rows: %w", err)
	}
	return matches, nil
}
