package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/dancerank/internal/errors"
	"github.com/vytor/dancerank/internal/models"
	"github.com/vytor/dancerank/internal/testutil/mocks"
)

type catalogDeps struct {
	musics *mocks.MockMusicRepository
	users  *mocks.MockUserRepository
	scores *mocks.MockScoreRepository
	svc    CatalogService
}

func newCatalogDeps() *catalogDeps {
	d := &catalogDeps{
		musics: new(mocks.MockMusicRepository),
		users:  new(mocks.MockUserRepository),
		scores: new(mocks.MockScoreRepository),
	}
	d.svc = NewCatalogService(d.musics, d.users, d.scores)
	return d
}

func TestAddMusic_TrimsTitle(t *testing.T) {
	d := newCatalogDeps()
	ctx := context.Background()
	d.musics.On("Insert", ctx, "Butter").Return(&models.Music{ID: 3, Title: "Butter"}, nil).Once()

	m, err := d.svc.AddMusic(ctx, "  Butter ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.ID)
	d.musics.AssertExpectations(t)
}

func TestAddMusic_RejectsBlankTitle(t *testing.T) {
	d := newCatalogDeps()

	_, err := d.svc.AddMusic(context.Background(), "   ")
	requireCode(t, err, errors.ErrCodeValidation)
	d.musics.AssertNotCalled(t, "Insert")
}

func TestAddMusic_StorageFailure(t *testing.T) {
	d := newCatalogDeps()
	ctx := context.Background()
	d.musics.On("Insert", ctx, "Hype Boy").Return(nil, stderrors.New("disk full"))

	_, err := d.svc.AddMusic(ctx, "Hype Boy")
	requireCode(t, err, errors.ErrCodeInternal)
}

func TestGetMusic(t *testing.T) {
	d := newCatalogDeps()
	ctx := context.Background()
	d.musics.On("Get", ctx, int64(1)).Return(&models.Music{ID: 1, Title: "OMG", Played: 4}, nil)
	d.musics.On("Get", ctx, int64(2)).Return(nil, nil)

	m, err := d.svc.GetMusic(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, m.Played)

	_, err = d.svc.GetMusic(ctx, 2)
	requireCode(t, err, errors.ErrCodeNotFound)
}

func TestAddUser(t *testing.T) {
	d := newCatalogDeps()
	ctx := context.Background()
	d.users.On("Insert", ctx, "minji", "https://img.example/m.png").
		Return(&models.User{ID: 9, Nickname: "minji"}, nil).Once()

	u, err := d.svc.AddUser(ctx, " minji", "https://img.example/m.png")
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)

	_, err = d.svc.AddUser(ctx, "", "")
	requireCode(t, err, errors.ErrCodeValidation)
	d.users.AssertExpectations(t)
}
