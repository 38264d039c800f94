package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
)

type sheetRepository struct {
	db *db.DB
}

// NewSheetRepository creates a new SheetRepository implementation
func NewSheetRepository(db *db.DB) repository.SheetRepository {
	return &sheetRepository{db: db}
}

func (r *sheetRepository) Get(ctx context.Context, musicID int64) (*models.ReferenceSheet, error) {
	log := logger.FromContext(ctx).WithPrefix("sheet_repo")
	log.Debug("getting reference sheet: music_id=%d", musicID)

	row, err := queryRow(ctx, r.db, r.db.Builder.
		Select("music_id", "video_url", "frames", "created_at").
		From("music_answer_sheets").
		Where(squirrel.Eq{"music_id": musicID}))
	if err != nil {
		return nil, err
	}

	var (
		sheet   models.ReferenceSheet
		raw     []byte
		created timestamp
	)
	err = row.Scan(&sheet.MusicID, &sheet.VideoURL, &raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("reference sheet not found: music_id=%d", musicID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get reference sheet: %v", err)
		return nil, err
	}
	if err := json.Unmarshal(raw, &sheet.Frames); err != nil {
		log.Error("corrupt reference sheet for music %d: %v", musicID, err)
		return nil, fmt.Errorf("decode sheet for music %d: %w", musicID, err)
	}
	sheet.CreatedAt = created.Time
	log.Debug("reference sheet loaded: %d frames", len(sheet.Frames))
	return &sheet, nil
}

func (r *sheetRepository) Insert(ctx context.Context, sheet models.ReferenceSheet) error {
	log := logger.FromContext(ctx).WithPrefix("sheet_repo")
	log.Debug("inserting reference sheet: music_id=%d, frames=%d", sheet.MusicID, len(sheet.Frames))

	raw, err := json.Marshal(sheet.Frames)
	if err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	created := sheet.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		var n int
		row, err := queryRow(ctx, tx, r.db.Builder.
			Select("COUNT(*)").
			From("musics").
			Where(squirrel.Eq{"id": sheet.MusicID}))
		if err != nil {
			return err
		}
		if err := row.Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("music %d: %w", sheet.MusicID, repository.ErrNotFound)
		}

		row, err = queryRow(ctx, tx, r.db.Builder.
			Select("COUNT(*)").
			From("music_answer_sheets").
			Where(squirrel.Eq{"music_id": sheet.MusicID}))
		if err != nil {
			return err
		}
		if err := row.Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("sheet for music %d: %w", sheet.MusicID, repository.ErrAlreadyExists)
		}

		if _, err := exec(ctx, tx, r.db.Builder.
			Insert("music_answer_sheets").
			Columns("music_id", "video_url", "frame_count", "frames", "created_at").
			Values(sheet.MusicID, sheet.VideoURL, len(sheet.Frames), string(raw), created.UTC())); err != nil {
			// a concurrent import won the race past the check above
			if isUniqueViolation(err) {
				return fmt.Errorf("sheet for music %d: %w", sheet.MusicID, repository.ErrAlreadyExists)
			}
			log.Error("failed to insert reference sheet: %v", err)
			return err
		}
		return nil
	})
}
