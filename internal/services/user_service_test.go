package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/database/testutil"
	apperrors "github.com/soundbay/soundbay/pkg/errors"
)

func newUserFixture(t *testing.T) (*gorm.DB, *UserService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwt, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "soundbay-test",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	svc, err := NewUserService(db, jwt)
	require.NoError(t, err)
	return db, svc
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := newUserFixture(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "asha@example.com", result.User.Email)
	assert.NotEqual(t, "correct-horse", result.User.PasswordHash)

	login, err := svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)

	_, err = svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newUserFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "First", Email: "dup@example.com", Password: "password-one",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Second", Email: "dup@example.com", Password: "password-two",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestTogglePlaylist(t *testing.T) {
	db, svc := newUserFixture(t)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)
	userID := result.User.ID

	album := seedAlbum(t, db, "Album")
	song := seedSong(t, db, "Track", 0, &album.ID)

	playlist, err := svc.TogglePlaylist(context.Background(), userID, song.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{song.ID}, playlist)

	playlist, err = svc.TogglePlaylist(context.Background(), userID, song.ID)
	require.NoError(t, err)
	assert.Empty(t, playlist)

	_, err = svc.TogglePlaylist(context.Background(), userID, "missing-song")
	assert.ErrorIs(t, err, ErrSongNotFound)
}
