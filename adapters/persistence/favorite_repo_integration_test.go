package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/nkduy/cinevault/internal/domain/favorite"
	"github.com/nkduy/cinevault/internal/domain/user"
)

type FavoriteRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool       *pgxpool.Pool
	pgContainer  *postgres.PostgresContainer
	favoriteRepo favorite.Repository
	userRepo     user.Repository
	testOwner    *user.User
}

func (s *FavoriteRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.favoriteRepo = NewPostgresFavoriteRepo(s.dbPool)
	s.userRepo = NewPostgresUserRepo(s.dbPool)

	s.testOwner = &user.User{
		ID:            uuid.New(),
		Email:         "testowner@example.com",
		PasswordHash:  "hashedpassword",
		EmailVerified: true,
	}
	query := `INSERT INTO users (id, email, password_hash, email_verified) VALUES ($1, $2, $3, $4)`
	_, err = s.dbPool.Exec(ctx, query, s.testOwner.ID, s.testOwner.Email, s.testOwner.PasswordHash, s.testOwner.EmailVerified)
	if err != nil {
		s.T().Fatalf("Failed to seed owner: %s", err)
	}
}

func (s *FavoriteRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func (s *FavoriteRepoIntegrationTestSuite) SetupTest() {
	_, err := s.dbPool.Exec(context.Background(), `DELETE FROM favorites`)
	s.Require().NoError(err)
}

func TestFavoriteRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(FavoriteRepoIntegrationTestSuite))
}

func (s *FavoriteRepoIntegrationTestSuite) newFavorite(mediaID int64, mediaType favorite.MediaType) *favorite.Favorite {
	return &favorite.Favorite{
		UserID:           s.testOwner.ID,
		MediaID:          mediaID,
		MediaType:        mediaType,
		MediaTitle:       "Some Title",
		MediaReleaseDate: "2008-07-18",
		CreatedAt:        time.Now().UTC(),
	}
}

func (s *FavoriteRepoIntegrationTestSuite) Test_Upsert_ReportsCreation() {
	ctx := context.Background()

	first, created, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(155, favorite.MediaTypeMovie))
	s.Require().NoError(err)
	s.True(created)
	s.NotZero(first.ID)
	s.Equal(s.testOwner.ID, first.UserID)

	second, created, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(155, favorite.MediaTypeMovie))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_Upsert_ConcurrentCallsResolveToOneRow() {
	ctx := context.Background()

	const callers = 8
	createdResults := make(chan bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(603, favorite.MediaTypeMovie))
			s.NoError(err)
			createdResults <- created
		}()
	}
	wg.Wait()
	close(createdResults)

	createdCount := 0
	for created := range createdResults {
		if created {
			createdCount++
		}
	}
	s.Equal(1, createdCount, "exactly one caller observes created=true")

	var rowCount int
	err := s.dbPool.QueryRow(ctx, `SELECT COUNT(*) FROM favorites WHERE media_id = 603`).Scan(&rowCount)
	s.Require().NoError(err)
	s.Equal(1, rowCount)
}

// The conflict target is (user_id, media_id): a movie and a TV show
// sharing a numeric id collide on the same row.
func (s *FavoriteRepoIntegrationTestSuite) Test_Upsert_ConflictIgnoresMediaType() {
	ctx := context.Background()

	movie, created, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(42, favorite.MediaTypeMovie))
	s.Require().NoError(err)
	s.Require().True(created)

	tv, created, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(42, favorite.MediaTypeTV))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(movie.ID, tv.ID)
	s.Equal(favorite.MediaTypeMovie, tv.MediaType)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_ListByUser_KeysetPagination() {
	ctx := context.Background()

	for i := int64(1); i <= 7; i++ {
		f := s.newFavorite(i, favorite.MediaTypeMovie)
		f.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		_, _, err := s.favoriteRepo.Upsert(ctx, f)
		s.Require().NoError(err)
	}

	firstPage, err := s.favoriteRepo.ListByUser(ctx, s.testOwner.ID, nil, 5)
	s.Require().NoError(err)
	s.Require().Len(firstPage, 5)

	// newest first
	for i := 1; i < len(firstPage); i++ {
		s.True(firstPage[i].CreatedAt.Before(firstPage[i-1].CreatedAt))
	}

	cursor := firstPage[len(firstPage)-1].ID
	secondPage, err := s.favoriteRepo.ListByUser(ctx, s.testOwner.ID, &cursor, 5)
	s.Require().NoError(err)
	s.Len(secondPage, 2)

	for _, f := range secondPage {
		s.Less(f.ID, cursor)
	}
}

func (s *FavoriteRepoIntegrationTestSuite) Test_ListByUser_ScopedToOwner() {
	ctx := context.Background()

	other := &user.User{ID: uuid.New(), Email: "other@example.com", PasswordHash: "x"}
	_, err := s.dbPool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		other.ID, other.Email, other.PasswordHash)
	s.Require().NoError(err)

	_, _, err = s.favoriteRepo.Upsert(ctx, s.newFavorite(1, favorite.MediaTypeMovie))
	s.Require().NoError(err)

	otherFavorite := s.newFavorite(2, favorite.MediaTypeTV)
	otherFavorite.UserID = other.ID
	_, _, err = s.favoriteRepo.Upsert(ctx, otherFavorite)
	s.Require().NoError(err)

	mine, err := s.favoriteRepo.ListByUser(ctx, s.testOwner.ID, nil, 10)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(int64(1), mine[0].MediaID)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_DeleteByID_OwnershipScoped() {
	ctx := context.Background()

	stored, _, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(155, favorite.MediaTypeMovie))
	s.Require().NoError(err)

	deleted, err := s.favoriteRepo.DeleteByID(ctx, stored.ID, uuid.New())
	s.Require().NoError(err)
	s.Equal(int64(0), deleted, "a stranger's delete matches no rows")

	deleted, err = s.favoriteRepo.DeleteByID(ctx, stored.ID, s.testOwner.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	deleted, err = s.favoriteRepo.DeleteByID(ctx, stored.ID, s.testOwner.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), deleted)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_DeleteByMedia() {
	ctx := context.Background()

	_, _, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(155, favorite.MediaTypeMovie))
	s.Require().NoError(err)

	deleted, err := s.favoriteRepo.DeleteByMedia(ctx, s.testOwner.ID, 155, favorite.MediaTypeTV)
	s.Require().NoError(err)
	s.Equal(int64(0), deleted, "delete by media matches the full media identity")

	deleted, err = s.favoriteRepo.DeleteByMedia(ctx, s.testOwner.ID, 155, favorite.MediaTypeMovie)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_FindByMedia() {
	ctx := context.Background()

	_, _, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(155, favorite.MediaTypeMovie))
	s.Require().NoError(err)

	found, err := s.favoriteRepo.FindByMedia(ctx, s.testOwner.ID, 155, favorite.MediaTypeMovie)
	s.Require().NoError(err)
	s.Equal(int64(155), found.MediaID)

	_, err = s.favoriteRepo.FindByMedia(ctx, s.testOwner.ID, 155, favorite.MediaTypeTV)
	s.ErrorIs(err, favorite.ErrFavoriteNotFound)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_FindByMediaBatch() {
	ctx := context.Background()

	_, _, err := s.favoriteRepo.Upsert(ctx, s.newFavorite(1, favorite.MediaTypeMovie))
	s.Require().NoError(err)
	_, _, err = s.favoriteRepo.Upsert(ctx, s.newFavorite(2, favorite.MediaTypeTV))
	s.Require().NoError(err)

	matches, err := s.favoriteRepo.FindByMediaBatch(ctx, s.testOwner.ID, []favorite.MediaRef{
		{MediaID: 1, MediaType: favorite.MediaTypeMovie},
		{MediaID: 2, MediaType: favorite.MediaTypeMovie},
		{MediaID: 3, MediaType: favorite.MediaTypeTV},
	})
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal(int64(1), matches[0].MediaID)

	matches, err = s.favoriteRepo.FindByMediaBatch(ctx, s.testOwner.ID, nil)
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *FavoriteRepoIntegrationTestSuite) Test_UserRepo_FindByID() {
	ctx := context.Background()

	found, err := s.userRepo.FindByID(ctx, s.testOwner.ID)
	s.Require().NoError(err)
	s.Equal(s.testOwner.Email, found.Email)
	s.True(found.EmailVerified)

	_, err = s.userRepo.FindByID(ctx, uuid.New())
	s.ErrorIs(err, user.ErrUserNotFound)
}
