package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates or updates the songs table and its lookup indexes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&songModel{}); err != nil {
		return r.logError("song_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) InsertSong(ctx context.Context, song entities.Song) error {
	row := songModelFromEntity(song)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSongConflict
		}
		return r.logError("song_repo_insert_failed", err, "song_id", row.ID)
	}
	return nil
}

func (r *Repository) GetSong(ctx context.Context, songID string) (entities.Song, error) {
	var row songModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(songID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Song{}, domainerrors.ErrSongNotFound
		}
		return entities.Song{}, r.logError("song_repo_get_failed", err, "song_id", strings.TrimSpace(songID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSongsByName(ctx context.Context, name string, since time.Time) ([]entities.Song, error) {
	var rows []songModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Where("created_at > ?", since.UTC()).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("song_repo_list_by_name_failed", err, "name", name)
	}
	return toSongEntities(rows), nil
}

func (r *Repository) CountSongsBySubmitter(ctx context.Context, key entities.SubmitterKey, since time.Time) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&songModel{}).
		Where("submitter_name = ?", key.Name).
		Where("submitter_class = ?", key.Class).
		Where("submitter_grade = ?", key.Grade).
		Where("created_at > ?", since.UTC()).
		Count(&count).Error; err != nil {
		return 0, r.logError("song_repo_count_by_submitter_failed", err,
			"submitter_class", key.Class,
			"submitter_grade", key.Grade,
		)
	}
	return int(count), nil
}

func (r *Repository) ListSongsCreatedSince(ctx context.Context, since time.Time) ([]entities.Song, error) {
	var rows []songModel
	if err := r.db.WithContext(ctx).
		Where("created_at > ?", since.UTC()).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("song_repo_list_recent_failed", err)
	}
	return toSongEntities(rows), nil
}

func (r *Repository) UpdateStatus(ctx context.Context, songID string, status entities.Status) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&songModel{}).
		Where("id = ?", strings.TrimSpace(songID)).
		Update("status", string(status))
	if result.Error != nil {
		return 0, r.logError("song_repo_update_status_failed", result.Error, "song_id", strings.TrimSpace(songID))
	}
	return int(result.RowsAffected), nil
}

// UpdateStatusWhereIn runs as one UPDATE statement, so readers observe either
// none or all of the matched rows in the new status.
func (r *Repository) UpdateStatusWhereIn(ctx context.Context, songIDs []string, status entities.Status) (int, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&songModel{}).
		Where("id IN ?", songIDs).
		Update("status", string(status))
	if result.Error != nil {
		return 0, r.logError("song_repo_batch_update_status_failed", result.Error, "requested", len(songIDs))
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) DeleteSong(ctx context.Context, songID string) (int, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(songID)).
		Delete(&songModel{})
	if result.Error != nil {
		return 0, r.logError("song_repo_delete_failed", result.Error, "song_id", strings.TrimSpace(songID))
	}
	return int(result.RowsAffected), nil
}

// AddVote appends the voter and bumps votesum in a single conditional UPDATE.
// Postgres row locking serializes concurrent voters on the same song and the
// NOT ANY guard re-evaluates against the committed row, so no increment is
// lost and no token is counted twice.
func (r *Repository) AddVote(ctx context.Context, songID string, voterToken string) (entities.VoteOutcome, error) {
	songID = strings.TrimSpace(songID)
	var rows []voteSumRow
	// gorm-postgres-enforcer: allow-raw-sql array_append/ANY conditional update has no builder equivalent
	err := r.db.WithContext(ctx).Raw(`
		UPDATE songs
		SET vote_users = array_append(vote_users, @token), votesum = votesum + 1
		WHERE id = @id AND NOT (@token = ANY(vote_users))
		RETURNING votesum`,
		map[string]any{"token": voterToken, "id": songID},
	).Scan(&rows).Error
	if err != nil {
		return entities.VoteOutcome{}, r.logError("song_repo_add_vote_failed", err, "song_id", songID)
	}
	if len(rows) == 1 {
		return entities.VoteOutcome{Recorded: true, VoteSum: rows[0].VoteSum}, nil
	}

	current, err := r.GetSong(ctx, songID)
	if err != nil {
		return entities.VoteOutcome{}, err
	}
	return entities.VoteOutcome{Recorded: false, VoteSum: current.VoteSum}, nil
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

type songModel struct {
	ID             string         `gorm:"column:id;primaryKey"`
	Name           string         `gorm:"column:name;not null;index:idx_songs_name_created,priority:1"`
	Artist         string         `gorm:"column:artist;not null;default:''"`
	Message        string         `gorm:"column:message;not null;default:''"`
	SubmitterName  string         `gorm:"column:submitter_name;not null;index:idx_songs_submitter_created,priority:1"`
	SubmitterClass string         `gorm:"column:submitter_class;not null;index:idx_songs_submitter_created,priority:2"`
	SubmitterGrade string         `gorm:"column:submitter_grade;not null;index:idx_songs_submitter_created,priority:3"`
	Status         string         `gorm:"column:status;not null;default:pending"`
	VoteSum        int            `gorm:"column:votesum;not null;default:0"`
	VoteUsers      pq.StringArray `gorm:"column:vote_users;type:text[];not null;default:'{}'"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index:idx_songs_name_created,priority:2;index:idx_songs_submitter_created,priority:4;index"`
}

func (songModel) TableName() string {
	return "songs"
}

type voteSumRow struct {
	VoteSum int `gorm:"column:votesum"`
}

func songModelFromEntity(song entities.Song) songModel {
	status := song.Status
	if status == "" {
		status = entities.StatusPending
	}
	createdAt := song.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return songModel{
		ID:             strings.TrimSpace(song.SongID),
		Name:           song.Name,
		Artist:         song.Artist,
		Message:        song.Message,
		SubmitterName:  song.SubmitterName,
		SubmitterClass: song.SubmitterClass,
		SubmitterGrade: song.SubmitterGrade,
		Status:         string(status),
		VoteSum:        song.VoteSum,
		VoteUsers:      pq.StringArray(song.VoteUsers.Slice()),
		CreatedAt:      createdAt,
	}
}

func (m songModel) toEntity() entities.Song {
	return entities.Song{
		SongID:         m.ID,
		Name:           m.Name,
		Artist:         m.Artist,
		Message:        m.Message,
		SubmitterName:  m.SubmitterName,
		SubmitterClass: m.SubmitterClass,
		SubmitterGrade: m.SubmitterGrade,
		Status:         entities.Status(m.Status),
		VoteSum:        m.VoteSum,
		VoteUsers:      entities.NewVoterSet(m.VoteUsers...),
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func toSongEntities(rows []songModel) []entities.Song {
	items := make([]entities.Song, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.SongRepository = (*Repository)(nil)
