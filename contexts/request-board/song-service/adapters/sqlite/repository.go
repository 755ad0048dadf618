package sqliteadapter

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var embeddedSchema embed.FS

const songColumns = `id, name, artist, message, submitter_name, submitter_class, submitter_grade, status, votesum, created_at`

// Repository stores songs in SQLite. Voters live in song_votes keyed by
// (song_id, voter_token), so membership is a primary key lookup.
type Repository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return err
	}
	b, err := embeddedSchema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, strings.TrimSpace(string(b)))
	return err
}

func (r *Repository) InsertSong(ctx context.Context, song entities.Song) error {
	status := song.Status
	if status == "" {
		status = entities.StatusPending
	}
	createdAt := song.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.logError("song_sqlite_insert_begin_failed", err, "song_id", song.SongID)
	}
	defer tx.Rollback()

	voters := song.VoteUsers.Slice()
	_, err = tx.ExecContext(ctx, `
INSERT INTO songs(`+songColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, strings.TrimSpace(song.SongID), song.Name, song.Artist, song.Message,
		song.SubmitterName, song.SubmitterClass, song.SubmitterGrade,
		string(status), len(voters), createdAt.UTC().UnixNano())
	if err != nil {
		if isConstraintViolation(err) {
			return domainerrors.ErrSongConflict
		}
		return r.logError("song_sqlite_insert_failed", err, "song_id", song.SongID)
	}
	for _, token := range voters {
		if _, err := tx.ExecContext(ctx, `INSERT INTO song_votes(song_id, voter_token) VALUES (?, ?)`, strings.TrimSpace(song.SongID), token); err != nil {
			return r.logError("song_sqlite_insert_voter_failed", err, "song_id", song.SongID)
		}
	}
	if err := tx.Commit(); err != nil {
		return r.logError("song_sqlite_insert_commit_failed", err, "song_id", song.SongID)
	}
	return nil
}

func (r *Repository) GetSong(ctx context.Context, songID string) (entities.Song, error) {
	songs, err := r.querySongs(ctx, `SELECT `+songColumns+` FROM songs WHERE id = ?`, strings.TrimSpace(songID))
	if err != nil {
		return entities.Song{}, r.logError("song_sqlite_get_failed", err, "song_id", songID)
	}
	if len(songs) == 0 {
		return entities.Song{}, domainerrors.ErrSongNotFound
	}
	return songs[0], nil
}

func (r *Repository) ListSongsByName(ctx context.Context, name string, since time.Time) ([]entities.Song, error) {
	songs, err := r.querySongs(ctx, `
SELECT `+songColumns+`
FROM songs
WHERE name = ? AND created_at > ?
ORDER BY created_at, rowid
`, name, since.UTC().UnixNano())
	if err != nil {
		return nil, r.logError("song_sqlite_list_by_name_failed", err, "name", name)
	}
	return songs, nil
}

func (r *Repository) CountSongsBySubmitter(ctx context.Context, key entities.SubmitterKey, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM songs
WHERE submitter_name = ? AND submitter_class = ? AND submitter_grade = ? AND created_at > ?
`, key.Name, key.Class, key.Grade, since.UTC().UnixNano()).Scan(&count)
	if err != nil {
		return 0, r.logError("song_sqlite_count_by_submitter_failed", err)
	}
	return count, nil
}

func (r *Repository) ListSongsCreatedSince(ctx context.Context, since time.Time) ([]entities.Song, error) {
	songs, err := r.querySongs(ctx, `
SELECT `+songColumns+`
FROM songs
WHERE created_at > ?
ORDER BY created_at, rowid
`, since.UTC().UnixNano())
	if err != nil {
		return nil, r.logError("song_sqlite_list_recent_failed", err)
	}
	return songs, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, songID string, status entities.Status) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE songs SET status = ? WHERE id = ?`, string(status), strings.TrimSpace(songID))
	if err != nil {
		return 0, r.logError("song_sqlite_update_status_failed", err, "song_id", songID)
	}
	return rowsAffected(res)
}

// UpdateStatusWhereIn is a single UPDATE statement and therefore atomic.
func (r *Repository) UpdateStatusWhereIn(ctx context.Context, songIDs []string, status entities.Status) (int, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(songIDs)+1)
	args = append(args, string(status))
	for _, id := range songIDs {
		args = append(args, strings.TrimSpace(id))
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE songs SET status = ? WHERE id IN (`+placeholders(len(songIDs))+`)`,
		args...,
	)
	if err != nil {
		return 0, r.logError("song_sqlite_batch_update_status_failed", err, "requested", len(songIDs))
	}
	return rowsAffected(res)
}

func (r *Repository) DeleteSong(ctx context.Context, songID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, strings.TrimSpace(songID))
	if err != nil {
		return 0, r.logError("song_sqlite_delete_failed", err, "song_id", songID)
	}
	return rowsAffected(res)
}

// AddVote bumps votesum only when the voter row is absent and inserts the
// voter row in the same transaction. SQLite allows one writer at a time, so
// the guarded UPDATE always sees the latest committed voters.
func (r *Repository) AddVote(ctx context.Context, songID string, voterToken string) (entities.VoteOutcome, error) {
	songID = strings.TrimSpace(songID)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return entities.VoteOutcome{}, r.logError("song_sqlite_vote_begin_failed", err, "song_id", songID)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE songs
SET votesum = votesum + 1
WHERE id = ?
  AND NOT EXISTS (SELECT 1 FROM song_votes WHERE song_id = ? AND voter_token = ?)
`, songID, songID, voterToken)
	if err != nil {
		return entities.VoteOutcome{}, r.logError("song_sqlite_vote_update_failed", err, "song_id", songID)
	}
	updated, err := rowsAffected(res)
	if err != nil {
		return entities.VoteOutcome{}, err
	}

	if updated == 1 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO song_votes(song_id, voter_token) VALUES (?, ?)`, songID, voterToken); err != nil {
			if isConstraintViolation(err) {
				return r.duplicateVote(ctx, tx, songID)
			}
			return entities.VoteOutcome{}, r.logError("song_sqlite_vote_insert_failed", err, "song_id", songID)
		}
	}

	var voteSum int
	err = tx.QueryRowContext(ctx, `SELECT votesum FROM songs WHERE id = ?`, songID).Scan(&voteSum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.VoteOutcome{}, domainerrors.ErrSongNotFound
		}
		return entities.VoteOutcome{}, r.logError("song_sqlite_vote_read_failed", err, "song_id", songID)
	}
	if updated == 0 {
		return entities.VoteOutcome{Recorded: false, VoteSum: voteSum}, nil
	}
	if err := tx.Commit(); err != nil {
		return entities.VoteOutcome{}, r.logError("song_sqlite_vote_commit_failed", err, "song_id", songID)
	}
	return entities.VoteOutcome{Recorded: true, VoteSum: voteSum}, nil
}

func (r *Repository) duplicateVote(ctx context.Context, tx *sql.Tx, songID string) (entities.VoteOutcome, error) {
	if err := tx.Rollback(); err != nil {
		return entities.VoteOutcome{}, r.logError("song_sqlite_vote_rollback_failed", err, "song_id", songID)
	}
	current, err := r.GetSong(ctx, songID)
	if err != nil {
		return entities.VoteOutcome{}, err
	}
	return entities.VoteOutcome{Recorded: false, VoteSum: current.VoteSum}, nil
}

func (r *Repository) querySongs(ctx context.Context, query string, args ...any) ([]entities.Song, error) {
	songs, err := r.scanSongs(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	// The songs cursor must be closed first: the pool may hold a single
	// connection.
	if err := r.attachVoters(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *Repository) scanSongs(ctx context.Context, query string, args ...any) ([]entities.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []entities.Song
	for rows.Next() {
		var (
			s         entities.Song
			status    string
			createdAt int64
		)
		if err := rows.Scan(&s.SongID, &s.Name, &s.Artist, &s.Message, &s.SubmitterName,
			&s.SubmitterClass, &s.SubmitterGrade, &status, &s.VoteSum, &createdAt); err != nil {
			return nil, err
		}
		s.Status = entities.Status(status)
		s.CreatedAt = time.Unix(0, createdAt).UTC()
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return songs, nil
}

func (r *Repository) attachVoters(ctx context.Context, songs []entities.Song) error {
	if len(songs) == 0 {
		return nil
	}
	index := make(map[string]int, len(songs))
	args := make([]any, 0, len(songs))
	for i, song := range songs {
		index[song.SongID] = i
		args = append(args, song.SongID)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT song_id, voter_token
FROM song_votes
WHERE song_id IN (`+placeholders(len(songs))+`)
ORDER BY rowid
`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var songID, token string
		if err := rows.Scan(&songID, &token); err != nil {
			return err
		}
		if i, ok := index[songID]; ok {
			songs[i].VoteUsers.Add(token)
		}
	}
	return rows.Err()
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := []any{
		"event", event,
		"module", "request-board/song-service",
		"layer", "adapter",
		"error", err.Error(),
	}
	fields = append(fields, attrs...)
	r.logger.Error("song repository operation failed", fields...)
	return fmt.Errorf("%s: %w", event, err)
}

func rowsAffected(res sql.Result) (int, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

var _ ports.SongRepository = (*Repository)(nil)
