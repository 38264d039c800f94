package services

import (
	"context"
	"strings"

	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
)

// CatalogService seeds songs and players. Editing them is owned elsewhere.
type CatalogService interface {
	AddMusic(ctx context.Context, title string) (*models.Music, error)
	AddUser(ctx context.Context, nickname, profileImageURL string) (*models.User, error)
	GetMusic(ctx context.Context, id int64) (*models.Music, error)
	ListScores(ctx context.Context, musicID int64, limit int) ([]models.ScoreRecord, error)
}

type catalogService struct {
	musics repository.MusicRepository
	users  repository.UserRepository
	scores repository.ScoreRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(musics repository.MusicRepository, users repository.UserRepository, scores repository.ScoreRepository) CatalogService {
	return &catalogService{musics: musics, users: users, scores: scores}
}

func (s *catalogService) AddMusic(ctx context.Context, title string) (*models.Music, error) {
	log := logger.FromContext(ctx)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}

	m, err := s.musics.Insert(ctx, title)
	if err != nil {
		log.Error("failed to add music: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("music added: id=%d, title=%q", m.ID, m.Title)
	return m, nil
}

func (s *catalogService) AddUser(ctx context.Context, nickname, profileImageURL string) (*models.User, error) {
	log := logger.FromContext(ctx)
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, errors.NewValidationError("nickname", "must not be empty")
	}

	u, err := s.users.Insert(ctx, nickname, profileImageURL)
	if err != nil {
		log.Error("failed to add user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user added: id=%d, nickname=%q", u.ID, u.Nickname)
	return u, nil
}

func (s *catalogService) GetMusic(ctx context.Context, id int64) (*models.Music, error) {
	m, err := s.musics.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if m == nil {
		return nil, errors.NewNotFoundError("music", id)
	}
	return m, nil
}

func (s *catalogService) ListScores(ctx context.Context, musicID int64, limit int) ([]models.ScoreRecord, error) {
	recs, err := s.scores.ListByMusic(ctx, musicID, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list scores: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return recs, nil
}
