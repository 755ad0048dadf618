package postgresadapter

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("SONGBOARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SONGBOARD_TEST_POSTGRES_DSN not set")
	}
	pg, err := db.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	repo := NewRepository(pg.DB, nil)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, pg.DB.Exec("TRUNCATE TABLE songs").Error)
	return repo
}

func TestRepositoryInsertConflict(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	song := entities.Song{SongID: "pg-1", Name: "A", SubmitterName: "n", SubmitterClass: "c", SubmitterGrade: "g", CreatedAt: time.Now().UTC()}

	require.NoError(t, repo.InsertSong(ctx, song))
	require.ErrorIs(t, repo.InsertSong(ctx, song), domainerrors.ErrSongConflict)
}

func TestRepositoryAddVoteConcurrent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertSong(ctx, entities.Song{SongID: "pg-vote", Name: "V", SubmitterName: "n", SubmitterClass: "c", SubmitterGrade: "g", CreatedAt: time.Now().UTC()}))

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddVote(ctx, "pg-vote", fmt.Sprintf("voter-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	song, err := repo.GetSong(ctx, "pg-vote")
	require.NoError(t, err)
	require.Equal(t, voters, song.VoteSum)
	require.Equal(t, voters, song.VoteUsers.Len())

	dup, err := repo.AddVote(ctx, "pg-vote", "voter-0")
	require.NoError(t, err)
	require.False(t, dup.Recorded)
	require.Equal(t, voters, dup.VoteSum)

	_, err = repo.AddVote(ctx, "pg-missing", "voter-0")
	require.ErrorIs(t, err, domainerrors.ErrSongNotFound)
}

func TestRepositoryBatchStatusIgnoresMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.InsertSong(ctx, entities.Song{SongID: "pg-batch", Name: "B", SubmitterName: "n", SubmitterClass: "c", SubmitterGrade: "g", CreatedAt: time.Now().UTC()}))

	updated, err := repo.UpdateStatusWhereIn(ctx, []string{"pg-batch", "pg-nope"}, entities.StatusUsed)
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	song, err := repo.GetSong(ctx, "pg-batch")
	require.NoError(t, err)
	require.Equal(t, entities.StatusUsed, song.Status)
}
