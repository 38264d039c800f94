package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/dancerank/internal/db"
	"github.com/vytor/dancerank/internal/logger"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/repository"
)

type musicRepository struct {
	db *db.DB
}

// NewMusicRepository creates a new MusicRepository implementation
func NewMusicRepository(db *db.DB) repository.MusicRepository {
	return &musicRepository{db: db}
}

func (r *musicRepository) Get(ctx context.Context, id int64) (*models.Music, error) {
	log := logger.FromContext(ctx).WithPrefix("music_repo")

	row, err := queryRow(ctx, r.db, r.db.Builder.
		Select("id", "title", "played").
		From("musics").
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var m models.Music
	err = row.Scan(&m.ID, &m.Title, &m.Played)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("music not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get music: %v", err)
		return nil, err
	}
	return &m, nil
}

func (r *musicRepository) Insert(ctx context.Context, title string) (*models.Music, error) {
	log := logger.FromContext(ctx).WithPrefix("music_repo")

	row, err := queryRow(ctx, r.db, r.db.Builder.
		Insert("musics").
		Columns("title").
		Values(title).
		Suffix("RETURNING id, title, played"))
	if err != nil {
		return nil, err
	}
	var m models.Music
	if err := row.Scan(&m.ID, &m.Title, &m.Played); err != nil {
		log.Error("failed to insert music: %v", err)
		return nil, err
	}
	log.Debug("music inserted: id=%d", m.ID)
	return &m, nil
}

type userRepository struct {
	db *db.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *db.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	row, err := queryRow(ctx, r.db, r.db.Builder.
		Select("id", "nickname", "profile_image_url", "xp").
		From("users").
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	var u models.User
	err = row.Scan(&u.ID, &u.Nickname, &u.ProfileImageURL, &u.XP)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetMany(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	out := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := query(ctx, r.db, r.db.Builder.
		Select("id", "nickname", "profile_image_url", "xp").
		From("users").
		Where(squirrel.Eq{"id": ids}))
	if err != nil {
		log.Error("failed to get users: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Nickname, &u.ProfileImageURL, &u.XP); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

func (r *userRepository) Insert(ctx context.Context, nickname, profileImageURL string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")

	row, err := queryRow(ctx, r.db, r.db.Builder.
		Insert("users").
		Columns("nickname", "profile_image_url").
		Values(nickname, profileImageURL).
		Suffix("RETURNING id, nickname, profile_image_url, xp"))
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := row.Scan(&u.ID, &u.Nickname, &u.ProfileImageURL, &u.XP); err != nil {
		log.Error("failed to insert user: %v", err)
		return nil, err
	}
	log.Debug("user inserted: id=%d", u.ID)
	return &u, nil
}
