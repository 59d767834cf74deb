package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nkduy/cinevault/internal/application/service"
	"github.com/nkduy/cinevault/internal/domain/favorite"
	"github.com/nkduy/cinevault/internal/domain/user"
	"github.com/nkduy/cinevault/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testLogger = logger.NewZapLogger("development")

// memFavoriteRepo backs handler tests without a database. A mutex stands
// in for the store's per-statement atomicity.
type memFavoriteRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []*favorite.Favorite
}

func newMemFavoriteRepo() *memFavoriteRepo {
	return &memFavoriteRepo{nextID: 1}
}

func (r *memFavoriteRepo) Upsert(_ context.Context, f *favorite.Favorite) (*favorite.Favorite, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.UserID == f.UserID && existing.MediaID == f.MediaID {
			clone := *existing
			return &clone, false, nil
		}
	}

	stored := *f
	stored.ID = r.nextID
	r.nextID++
	r.records = append(r.records, &stored)

	clone := stored
	return &clone, true, nil
}

func (r *memFavoriteRepo) FindByMedia(_ context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (*favorite.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.records {
		if f.UserID == userID && f.MediaID == mediaID && f.MediaType == mediaType {
			clone := *f
			return &clone, nil
		}
	}
	return nil, favorite.ErrFavoriteNotFound
}

func (r *memFavoriteRepo) ListByUser(_ context.Context, userID uuid.UUID, beforeID *int64, limit int) ([]*favorite.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]*favorite.Favorite, 0)
	// records are appended in insertion order; walk backwards for
	// newest-first
	for i := len(r.records) - 1; i >= 0; i-- {
		f := r.records[i]
		if f.UserID != userID {
			continue
		}
		if beforeID != nil && f.ID >= *beforeID {
			continue
		}
		clone := *f
		matches = append(matches, &clone)
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

func (r *memFavoriteRepo) DeleteByID(_ context.Context, id int64, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.records {
		if f.ID == id && f.UserID == userID {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memFavoriteRepo) DeleteByMedia(_ context.Context, userID uuid.UUID, mediaID int64, mediaType favorite.MediaType) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, f := range r.records {
		if f.UserID == userID && f.MediaID == mediaID && f.MediaType == mediaType {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *memFavoriteRepo) FindByMediaBatch(_ context.Context, userID uuid.UUID, refs []favorite.MediaRef) ([]favorite.MediaRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]favorite.MediaRef, 0)
	for _, ref := range refs {
		for _, f := range r.records {
			if f.UserID == userID && f.MediaID == ref.MediaID && f.MediaType == ref.MediaType {
				matches = append(matches, ref)
				break
			}
		}
	}
	return matches, nil
}

func (r *memFavoriteRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type memUserRepo struct {
	users map[uuid.UUID]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *memUserRepo) add(u *user.User) {
	r.users[u.ID] = u
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// fakeCatalog serves one fixed page, enough to exercise the favorite
// annotation paths.
type fakeCatalog struct {
	page *service.CatalogPage
	err  error
}

func (f *fakeCatalog) Trending(_ context.Context, _, _ string, _ int) (*service.CatalogPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}
