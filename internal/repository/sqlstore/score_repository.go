package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
)

// Ties on score go to whoever reached it first.
var bestOrder = []string{"score DESC", "created_at ASC", "id ASC"}

type scoreRepository struct {
	db *db.DB
}

// NewScoreRepository creates a new ScoreRepository implementation
func NewScoreRepository(db *db.DB) repository.ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) Record(ctx context.Context, rec models.ScoreRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo").WithFields(map[string]any{
		"music_id": rec.MusicID,
		"user_id":  rec.UserID,
	})
	log.Debug("recording attempt: score=%.2f, rank=%s, delta_xp=%d", rec.Score, rec.Rank, rec.XPDelta)

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC()

	var scoreID int64
	err := r.db.Tx(ctx, func(tx *sql.Tx) error {
		res, err := exec(ctx, tx, r.db.Builder.
			Update("musics").
			Set("played", squirrel.Expr("played + 1")).
			Where(squirrel.Eq{"id": rec.MusicID}))
		if err != nil {
			return fmt.Errorf("bump play counter: %w", err)
		}
		if ok, err := affectedOne(res); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("music %d: %w", rec.MusicID, repository.ErrNotFound)
		}

		res, err = exec(ctx, tx, r.db.Builder.
			Update("users").
			Set("xp", squirrel.Expr("xp + ?", rec.XPDelta)).
			Where(squirrel.Eq{"id": rec.UserID}))
		if err != nil {
			return fmt.Errorf("add xp: %w", err)
		}
		if ok, err := affectedOne(res); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("user %d: %w", rec.UserID, repository.ErrNotFound)
		}

		row, err := queryRow(ctx, tx, r.db.Builder.
			Insert("user_scores").
			Columns("music_id", "user_id", "score", "rank", "delta_xp", "created_at").
			Values(rec.MusicID, rec.UserID, rec.Score, string(rec.Rank), rec.XPDelta, created).
			Suffix("RETURNING id"))
		if err != nil {
			return err
		}
		if err := row.Scan(&scoreID); err != nil {
			return fmt.Errorf("insert score: %w", err)
		}

		h := rec.Histogram
		if _, err := exec(ctx, tx, r.db.Builder.
			Insert("user_score_details").
			Columns("score_id", "perfect", "great", "good", "normal", "miss").
			Values(scoreID, h.Perfect, h.Great, h.Good, h.Normal, h.Miss)); err != nil {
			return fmt.Errorf("insert score detail: %w", err)
		}

		if _, err := exec(ctx, tx, r.db.Builder.
			Insert("user_play_logs").
			Columns("user_id", "music_id", "created_at").
			Values(rec.UserID, rec.MusicID, created)); err != nil {
			return fmt.Errorf("insert play log: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to record attempt: %v", err)
		return 0, err
	}

	log.Info("attempt recorded: score_id=%d", scoreID)
	return scoreID, nil
}

func (r *scoreRepository) recordSelect() squirrel.SelectBuilder {
	return r.db.Builder.
		Select("s.id", "s.music_id", "s.user_id", "s.score", "s.rank", "s.delta_xp", "s.created_at",
			"d.perfect", "d.great", "d.good", "d.normal", "d.miss").
		From("user_scores s").
		Join("user_score_details d ON d.score_id = s.id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (models.ScoreRecord, error) {
	var (
		rec     models.ScoreRecord
		rank    string
		created timestamp
		h       = &rec.Histogram
	)
	err := row.Scan(&rec.ID, &rec.MusicID, &rec.UserID, &rec.Score, &rank, &rec.XPDelta, &created,
		&h.Perfect, &h.Great, &h.Good, &h.Normal, &h.Miss)
	rec.Rank = models.Rank(rank)
	rec.CreatedAt = created.Time
	return rec, err
}

func (r *scoreRepository) Get(ctx context.Context, id int64) (*models.ScoreRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")

	row, err := queryRow(ctx, r.db, r.recordSelect().Where(squirrel.Eq{"s.id": id}))
	if err != nil {
		return nil, err
	}
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("score not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get score: %v", err)
		return nil, err
	}
	return &rec, nil
}

func (r *scoreRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.ScoreRecord, error) {
	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoreRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *scoreRepository) ListByMusic(ctx context.Context, musicID int64, limit int) ([]models.ScoreRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("listing scores: music_id=%d, limit=%d", musicID, limit)

	b := r.recordSelect().
		Where(squirrel.Eq{"s.music_id": musicID}).
		OrderBy("s.created_at DESC", "s.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	out, err := r.list(ctx, b)
	if err != nil {
		log.Error("failed to list scores: %v", err)
	}
	return out, err
}

func (r *scoreRepository) ListByMusicAndUser(ctx context.Context, musicID, userID int64, limit int) ([]models.ScoreRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("listing user scores: music_id=%d, user_id=%d, limit=%d", musicID, userID, limit)

	b := r.recordSelect().
		Where(squirrel.Eq{"s.music_id": musicID, "s.user_id": userID}).
		OrderBy("s.created_at DESC", "s.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	out, err := r.list(ctx, b)
	if err != nil {
		log.Error("failed to list user scores: %v", err)
	}
	return out, err
}

// perUserBest yields one row per user holding their best attempt on the song.
func (r *scoreRepository) perUserBest(musicID int64) squirrel.SelectBuilder {
	inner := r.db.Builder.
		Select("id", "user_id", "score", "created_at",
			"ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY "+strings.Join(bestOrder, ", ")+") AS rn").
		From("user_scores").
		Where(squirrel.Eq{"music_id": musicID})
	return r.db.Builder.
		Select("id", "user_id", "score", "created_at").
		FromSelect(inner, "ranked").
		Where("rn = 1")
}

func (r *scoreRepository) TopByMusic(ctx context.Context, musicID int64, limit int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("loading ranking: music_id=%d, limit=%d", musicID, limit)

	b := r.db.Builder.
		Select("b.user_id", "u.nickname", "u.profile_image_url", "u.xp", "b.score", "b.created_at").
		FromSelect(r.perUserBest(musicID), "b").
		Join("users u ON u.id = b.user_id").
		OrderBy("b.score DESC", "b.created_at ASC", "b.id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		log.Error("failed to load ranking: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var (
			e        models.LeaderboardEntry
			achieved timestamp
		)
		if err := rows.Scan(&e.UserID, &e.Nickname, &e.ProfileImageURL, &e.XP, &e.MaxScore, &achieved); err != nil {
			log.Error("failed to scan ranking row: %v", err)
			return nil, err
		}
		e.AchievedAt = achieved.Time
		e.Position = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Debug("ranking loaded: %d entries", len(entries))
	return entries, nil
}

func (r *scoreRepository) BestForUser(ctx context.Context, musicID, userID int64) (*models.UserBest, error) {
	log := logger.FromContext(ctx).WithPrefix("score_repo")
	log.Debug("loading best attempt: music_id=%d, user_id=%d", musicID, userID)

	row, err := queryRow(ctx, r.db, r.recordSelect().
		Where(squirrel.Eq{"s.music_id": musicID, "s.user_id": userID}).
		OrderBy("s.score DESC", "s.created_at ASC", "s.id ASC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no attempts yet: music_id=%d, user_id=%d", musicID, userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load best attempt: %v", err)
		return nil, err
	}

	positions := r.db.Builder.
		Select("user_id", "ROW_NUMBER() OVER (ORDER BY "+strings.Join(bestOrder, ", ")+") AS position").
		FromSelect(r.perUserBest(musicID), "b")
	row, err = queryRow(ctx, r.db, r.db.Builder.
		Select("position").
		FromSelect(positions, "p").
		Where(squirrel.Eq{"user_id": userID}))
	if err != nil {
		return nil, err
	}
	var position int
	if err := row.Scan(&position); err != nil {
		log.Error("failed to load position: %v", err)
		return nil, err
	}

	return &models.UserBest{
		ScoreID:   rec.ID,
		Score:     rec.Score,
		Rank:      rec.Rank,
		Histogram: rec.Histogram,
		Position:  position,
		CreatedAt: rec.CreatedAt,
	}, nil
}
