package songservice

import (
	"context"
	"fmt"
	"testing"

	"songboard/contexts/request-board/song-service/adapters/memory"
	postgresadapter "songboard/contexts/request-board/song-service/adapters/postgres"
	"songboard/contexts/request-board/song-service/application/commands"
	"songboard/contexts/request-board/song-service/domain/entities"
	"songboard/contexts/request-board/song-service/domain/services"
	"songboard/internal/platform/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedModule(t *testing.T) Module {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	bus := messaging.NewBus(nil)
	t.Cleanup(func() {
		cancel()
		bus.Wait()
	})

	module := NewModule(Dependencies{
		Songs:       memory.NewStore(nil),
		Cache:       memory.NewRecentCache(),
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Publisher:   bus,
		Subscriber:  bus,
		Windows:     services.DefaultAdmissionWindows(),
	})
	require.NoError(t, module.CacheInvalidator.Start(ctx))
	return module
}

func recentByID(t *testing.T, module Module) map[string]entities.Song {
	t.Helper()
	songs, err := module.Handler.Songs.GetRecent(context.Background())
	require.NoError(t, err)
	byID := make(map[string]entities.Song, len(songs))
	for _, song := range songs {
		byID[song.SongID] = song
	}
	return byID
}

func TestRecentListReflectsWritesOnReturn(t *testing.T) {
	module := newCachedModule(t)
	ctx := context.Background()

	for round := 0; round < 100; round++ {
		id := fmt.Sprintf("song-%d", round)
		result, err := module.Handler.Submit.Submit(ctx, commands.SubmitSongCommand{
			SongID:         id,
			Name:           fmt.Sprintf("Tune %d", round),
			SubmitterName:  fmt.Sprintf("student-%d", round),
			SubmitterClass: "3",
			SubmitterGrade: "11",
		})
		require.NoError(t, err)
		require.True(t, result.Accepted)

		song, ok := recentByID(t, module)[id]
		require.True(t, ok, "round %d: submitted song missing from the recent list", round)
		require.Equal(t, entities.StatusPending, song.Status)

		batch, err := module.Handler.Status.BatchSetStatus(ctx, commands.BatchSetStatusCommand{SongIDs: []string{id}, Status: "used"})
		require.NoError(t, err)
		require.Equal(t, 1, batch.Updated)
		require.Equal(t, entities.StatusUsed, recentByID(t, module)[id].Status, "round %d: batch status", round)

		_, err = module.Handler.Vote.Vote(ctx, commands.VoteCommand{SongID: id, VoterToken: "voter"})
		require.NoError(t, err)
		require.Equal(t, 1, recentByID(t, module)[id].VoteSum, "round %d: vote", round)

		require.NoError(t, module.Handler.Status.SetStatus(ctx, commands.SetStatusCommand{SongID: id, Status: "rejected"}))
		require.Equal(t, entities.StatusRejected, recentByID(t, module)[id].Status, "round %d: status", round)

		require.NoError(t, module.Handler.Remove.Remove(ctx, id))
		_, ok = recentByID(t, module)[id]
		require.False(t, ok, "round %d: removed song still listed", round)
	}
}

func TestInMemoryModuleServesFreshRecentList(t *testing.T) {
	module := NewInMemoryModule(nil, nil)
	ctx := context.Background()

	_, err := module.Handler.Submit.Submit(ctx, commands.SubmitSongCommand{
		SongID: "a", Name: "A", SubmitterName: "Mei", SubmitterClass: "3", SubmitterGrade: "11",
	})
	require.NoError(t, err)
	require.Len(t, recentByID(t, module), 1)

	_, err = module.Handler.Vote.Vote(ctx, commands.VoteCommand{SongID: "a", VoterToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, recentByID(t, module)["a"].VoteSum)

	require.NoError(t, module.Handler.Remove.Remove(ctx, "a"))
	assert.Empty(t, recentByID(t, module))
}
