package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/models"
	"github.com/soundbay/soundbay/pkg/crypto"
	apperrors "github.com/soundbay/soundbay/pkg/errors"
)

// RegisterInput describes the fields accepted when creating an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput carries credentials for authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult pairs an authenticated user with a signed access token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService manages accounts, credentials, and per-user playlists.
type UserService struct {
	db  *gorm.DB
	jwt *auth.JWTService
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB, jwt *auth.JWTService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if jwt == nil {
		return nil, errors.New("user service: jwt service is required")
	}
	return &UserService{db: db, jwt: jwt}, nil
}

// Register creates an account with a hashed password and signs a token for it.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	user.Normalise()

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("user service: sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !crypto.VerifyPassword(user.PasswordHash, input.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("user service: sign token: %w", err)
	}
	return &AuthResult{User: &user, Token: token}, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// TogglePlaylist adds the song to the user's playlist, or removes it when
// already present. Returns the updated playlist.
func (s *UserService) TogglePlaylist(ctx context.Context, userID, songID string) ([]string, error) {
	ctx = ensureContext(ctx)

	songID = strings.TrimSpace(songID)
	if songID == "" {
		return nil, apperrors.NewBadRequest("song id is required")
	}

	var song models.Song
	err := s.db.WithContext(ctx).First(&song, "id = ?", songID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: load song: %w", err)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	playlist := decodePlaylist(user.Playlist)
	if idx := indexOf(playlist, songID); idx >= 0 {
		playlist = append(playlist[:idx], playlist[idx+1:]...)
	} else {
		playlist = append(playlist, songID)
	}

	encoded, err := json.Marshal(playlist)
	if err != nil {
		return nil, fmt.Errorf("user service: encode playlist: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("playlist", datatypes.JSON(encoded)).Error; err != nil {
		return nil, fmt.Errorf("user service: save playlist: %w", err)
	}
	return playlist, nil
}

// Playlist returns the song ids on the user's playlist.
func (s *UserService) Playlist(ctx context.Context, userID string) ([]string, error) {
	user, err := s.GetByID(ensureContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	return decodePlaylist(user.Playlist), nil
}

func decodePlaylist(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var playlist []string
	if err := json.Unmarshal(raw, &playlist); err != nil {
		return []string{}
	}
	return playlist
}

func indexOf(values []string, target string) int {
	for i, value := range values {
		if value == target {
			return i
		}
	}
	return -1
}
