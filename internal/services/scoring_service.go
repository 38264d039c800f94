package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/metrics"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
	"github.com/vytor/dancerank/internal/scoring"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ScoringService grades plays and serves stored results.
type ScoringService interface {
	ScoreGuest(ctx context.Context, musicID int64, frames []models.Frame) (*models.GuestResult, error)
	// ScoreUser grades and stores a play. When storage fails the computed
	// attempt is still returned, unpersisted, alongside a retryable error.
	ScoreUser(ctx context.Context, musicID, userID int64, frames []models.Frame) (*models.Attempt, error)
	GetResult(ctx context.Context, scoreID, userID int64) (*models.ResultView, error)
	GetAnswer(ctx context.Context, musicID int64) (*models.Answer, error)
	ImportSheet(ctx context.Context, musicID int64, videoURL string, frames []models.Frame) error
	History(ctx context.Context, musicID, userID int64, limit int) ([]models.ScoreRecord, error)
}

type scoringService struct {
	engine   *scoring.Engine
	sheets   repository.SheetRepository
	scores   repository.ScoreRepository
	users    repository.UserRepository
	recorder ScoreRecorder
	metrics  *metrics.Manager
}

// NewScoringService creates a new ScoringService
func NewScoringService(engine *scoring.Engine, sheets repository.SheetRepository, scores repository.ScoreRepository, users repository.UserRepository, recorder ScoreRecorder, m *metrics.Manager) ScoringService {
	if engine == nil {
		engine = scoring.NewEngine()
	}
	if m == nil {
		m = metrics.NewManager()
	}
	return &scoringService{
		engine:   engine,
		sheets:   sheets,
		scores:   scores,
		users:    users,
		recorder: recorder,
		metrics:  m,
	}
}

func (s *scoringService) grade(ctx context.Context, kind string, musicID int64, frames []models.Frame) (models.ScoreResult, error) {
	log := logger.FromContext(ctx)

	sheet, err := s.sheets.Get(ctx, musicID)
	if err != nil {
		log.Error("failed to load reference sheet: %v", err)
		return models.ScoreResult{}, errors.NewInternalError(err)
	}
	if sheet == nil || len(sheet.Frames) == 0 {
		return models.ScoreResult{}, errors.NewNotFoundError("reference sheet", musicID)
	}

	start := time.Now()
	result := s.engine.Score(sheet.Frames, frames)
	s.metrics.ObserveAttempt(kind, result.Score, time.Since(start))

	log.Debug("graded %d of %d frames: score=%.2f, rank=%s", result.FramesGraded, len(frames), result.Score, result.Rank)
	return result, nil
}

func (s *scoringService) ScoreGuest(ctx context.Context, musicID int64, frames []models.Frame) (*models.GuestResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("scoring guest play: music_id=%d, frames=%d", musicID, len(frames))

	result, err := s.grade(ctx, metrics.KindGuest, musicID, frames)
	if err != nil {
		return nil, err
	}
	guest := result.Guest()
	return &guest, nil
}

func (s *scoringService) ScoreUser(ctx context.Context, musicID, userID int64, frames []models.Frame) (*models.Attempt, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Debug("scoring user play: music_id=%d, frames=%d", musicID, len(frames))

	result, err := s.grade(ctx, metrics.KindUser, musicID, frames)
	if err != nil {
		return nil, err
	}

	attempt := &models.Attempt{ScoreResult: result}
	scoreID, err := s.recorder.Record(ctx, musicID, userID, result)
	if err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Retryable() {
			log.Warn("returning unpersisted attempt: %v", err)
			return attempt, err
		}
		return nil, err
	}

	attempt.ScoreID = scoreID
	attempt.Persisted = true
	log.Info("attempt stored: score_id=%d, score=%.2f, rank=%s, delta_xp=%d", scoreID, result.Score, result.Rank, result.XPDelta)
	return attempt, nil
}

func (s *scoringService) GetResult(ctx context.Context, scoreID, userID int64) (*models.ResultView, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting result: score_id=%d, user_id=%d", scoreID, userID)

	rec, err := s.scores.Get(ctx, scoreID)
	if err != nil {
		log.Error("failed to get score: %v", err)
		return nil, errors.NewInternalError(err)
	}
	// Someone else's result is reported as missing.
	if rec == nil || rec.UserID != userID {
		return nil, errors.NewNotFoundError("score", scoreID)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", userID)
	}

	return &models.ResultView{ScoreRecord: *rec, XP: user.XP}, nil
}

func (s *scoringService) GetAnswer(ctx context.Context, musicID int64) (*models.Answer, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting answer: music_id=%d", musicID)

	sheet, err := s.sheets.Get(ctx, musicID)
	if err != nil {
		log.Error("failed to load reference sheet: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if sheet == nil {
		return nil, errors.NewNotFoundError("reference sheet", musicID)
	}
	return &models.Answer{
		MusicID:    sheet.MusicID,
		VideoURL:   sheet.VideoURL,
		FrameCount: len(sheet.Frames),
		Sheet:      sheet.Frames,
	}, nil
}

func (s *scoringService) ImportSheet(ctx context.Context, musicID int64, videoURL string, frames []models.Frame) error {
	log := logger.FromContext(ctx)
	log.Info("importing reference sheet: music_id=%d, frames=%d", musicID, len(frames))

	if len(frames) == 0 {
		return errors.NewValidationError("frames", "at least one frame is required")
	}
	for i, f := range frames {
		if len(f.Keypoints) == 0 {
			return errors.NewValidationError("frames", fmt.Sprintf("frame %d has no keypoints", i))
		}
	}

	err := s.sheets.Insert(ctx, models.ReferenceSheet{
		MusicID:   musicID,
		VideoURL:  videoURL,
		Frames:    frames,
		CreatedAt: time.Now().UTC(),
	})
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, repository.ErrAlreadyExists):
		return errors.NewConflictError("reference sheet", musicID)
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError("music", musicID)
	default:
		log.Error("failed to import reference sheet: %v", err)
		return errors.NewInternalError(err)
	}
}

func (s *scoringService) History(ctx context.Context, musicID, userID int64, limit int) ([]models.ScoreRecord, error) {
	log := logger.FromContext(ctx)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	log.Debug("getting history: music_id=%d, user_id=%d, limit=%d", musicID, userID, limit)

	recs, err := s.scores.ListByMusicAndUser(ctx, musicID, userID, limit)
	if err != nil {
		log.Error("failed to list history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if recs == nil {
		recs = []models.ScoreRecord{}
	}
	return recs, nil
}
