package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
)

func TestInsertSongRejectsDuplicateID(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	song := entities.Song{SongID: "song-1", Name: "First", CreatedAt: now}

	if err := store.InsertSong(context.Background(), song); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	song.Name = "Second"
	if err := store.InsertSong(context.Background(), song); !errors.Is(err, domainerrors.ErrSongConflict) {
		t.Fatalf("expected ErrSongConflict, got %v", err)
	}

	stored, err := store.GetSong(context.Background(), "song-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Name != "First" {
		t.Fatalf("expected original row to survive, got name %q", stored.Name)
	}
}

func TestAddVoteConcurrentDistinctVoters(t *testing.T) {
	store := NewStore([]entities.Song{{SongID: "song-1", Name: "Tally", CreatedAt: time.Now().UTC()}})

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.AddVote(context.Background(), "song-1", fmt.Sprintf("voter-%d", i)); err != nil {
				t.Errorf("vote %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	song, err := store.GetSong(context.Background(), "song-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if song.VoteSum != voters || song.VoteUsers.Len() != voters {
		t.Fatalf("expected %d votes, got votesum=%d voters=%d", voters, song.VoteSum, song.VoteUsers.Len())
	}
}

func TestAddVoteDuplicateLeavesTallyUnchanged(t *testing.T) {
	store := NewStore([]entities.Song{{SongID: "song-1", Name: "Tally", CreatedAt: time.Now().UTC()}})

	first, err := store.AddVote(context.Background(), "song-1", "voter-a")
	if err != nil || !first.Recorded || first.VoteSum != 1 {
		t.Fatalf("unexpected first vote outcome %+v err=%v", first, err)
	}
	second, err := store.AddVote(context.Background(), "song-1", "voter-a")
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if second.Recorded || second.VoteSum != 1 {
		t.Fatalf("expected duplicate outcome with votesum 1, got %+v", second)
	}
	if _, err := store.AddVote(context.Background(), "missing", "voter-a"); !errors.Is(err, domainerrors.ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestGetSongReturnsIsolatedVoterSet(t *testing.T) {
	store := NewStore([]entities.Song{{SongID: "song-1", Name: "Iso", CreatedAt: time.Now().UTC()}})
	song, _ := store.GetSong(context.Background(), "song-1")
	song.VoteUsers.Add("sneaky")

	again, _ := store.GetSong(context.Background(), "song-1")
	if again.VoteUsers.Has("sneaky") {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestListSongsCreatedSinceKeepsInsertionOrder(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(nil)
	for i, id := range []string{"c", "a", "b"} {
		if err := store.InsertSong(context.Background(), entities.Song{SongID: id, Name: id, CreatedAt: now.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	songs, err := store.ListSongsCreatedSince(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	got := []string{songs[0].SongID, songs[1].SongID, songs[2].SongID}
	if got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestUpdateStatusWhereInIgnoresMissingIDs(t *testing.T) {
	store := NewStore([]entities.Song{{SongID: "song-1", Name: "One", CreatedAt: time.Now().UTC()}})
	updated, err := store.UpdateStatusWhereIn(context.Background(), []string{"song-1", "missing"}, entities.StatusUsed)
	if err != nil {
		t.Fatalf("batch update failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated row, got %d", updated)
	}
	song, _ := store.GetSong(context.Background(), "song-1")
	if song.Status != entities.StatusUsed {
		t.Fatalf("expected used status, got %q", song.Status)
	}
}
