package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"
)

// Store is an in-process song store. A single mutex guards every song, so
// AddVote's membership check and increment form one critical section.
type Store struct {
	mu       sync.RWMutex
	songs    map[string]entities.Song
	sequence map[string]int
	next     int
}

func NewStore(seed []entities.Song) *Store {
	store := &Store{
		songs:    make(map[string]entities.Song, len(seed)),
		sequence: make(map[string]int, len(seed)),
	}
	for _, song := range seed {
		store.put(song)
	}
	return store
}

func (s *Store) put(song entities.Song) {
	id := strings.TrimSpace(song.SongID)
	song.SongID = id
	song.VoteUsers = song.VoteUsers.Clone()
	if song.Status == "" {
		song.Status = entities.StatusPending
	}
	if _, exists := s.sequence[id]; !exists {
		s.next++
		s.sequence[id] = s.next
	}
	s.songs[id] = song
}

func (s *Store) InsertSong(_ context.Context, song entities.Song) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.songs[strings.TrimSpace(song.SongID)]; exists {
		return domainerrors.ErrSongConflict
	}
	s.put(song)
	return nil
}

func (s *Store) GetSong(_ context.Context, songID string) (entities.Song, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.songs[strings.TrimSpace(songID)]
	if !ok {
		return entities.Song{}, domainerrors.ErrSongNotFound
	}
	return cloneSong(song), nil
}

func (s *Store) ListSongsByName(_ context.Context, name string, since time.Time) ([]entities.Song, error) {
	return s.filter(func(song entities.Song) bool {
		return song.Name == name && song.CreatedAt.After(since)
	}), nil
}

func (s *Store) CountSongsBySubmitter(_ context.Context, key entities.SubmitterKey, since time.Time) (int, error) {
	return len(s.filter(func(song entities.Song) bool {
		return song.SubmitterKey() == key && song.CreatedAt.After(since)
	})), nil
}

func (s *Store) ListSongsCreatedSince(_ context.Context, since time.Time) ([]entities.Song, error) {
	return s.filter(func(song entities.Song) bool {
		return song.CreatedAt.After(since)
	}), nil
}

func (s *Store) UpdateStatus(_ context.Context, songID string, status entities.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[strings.TrimSpace(songID)]
	if !ok {
		return 0, nil
	}
	song.Status = status
	s.songs[song.SongID] = song
	return 1, nil
}

func (s *Store) UpdateStatusWhereIn(_ context.Context, songIDs []string, status entities.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	seen := make(map[string]struct{}, len(songIDs))
	for _, songID := range songIDs {
		songID = strings.TrimSpace(songID)
		if _, dup := seen[songID]; dup {
			continue
		}
		seen[songID] = struct{}{}
		song, ok := s.songs[songID]
		if !ok {
			continue
		}
		song.Status = status
		s.songs[song.SongID] = song
		updated++
	}
	return updated, nil
}

func (s *Store) DeleteSong(_ context.Context, songID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	songID = strings.TrimSpace(songID)
	if _, ok := s.songs[songID]; !ok {
		return 0, nil
	}
	delete(s.songs, songID)
	delete(s.sequence, songID)
	return 1, nil
}

func (s *Store) AddVote(_ context.Context, songID string, voterToken string) (entities.VoteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[strings.TrimSpace(songID)]
	if !ok {
		return entities.VoteOutcome{}, domainerrors.ErrSongNotFound
	}
	voters := song.VoteUsers.Clone()
	if !voters.Add(voterToken) {
		return entities.VoteOutcome{Recorded: false, VoteSum: song.VoteSum}, nil
	}
	song.VoteUsers = voters
	song.VoteSum++
	s.songs[song.SongID] = song
	return entities.VoteOutcome{Recorded: true, VoteSum: song.VoteSum}, nil
}

func (s *Store) filter(match func(entities.Song) bool) []entities.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Song, 0)
	for _, song := range s.songs {
		if match(song) {
			items = append(items, cloneSong(song))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return s.sequence[items[i].SongID] < s.sequence[items[j].SongID]
	})
	return items
}

func cloneSong(song entities.Song) entities.Song {
	song.VoteUsers = song.VoteUsers.Clone()
	return song
}

var _ ports.SongRepository = (*Store)(nil)
