package services

import (
	"net/http"

	apperrors "github.com/soundbay/soundbay/pkg/errors"
)

var (
	// ErrAlbumNotFound indicates the requested album does not exist.
	ErrAlbumNotFound = apperrors.New("ALBUM_NOT_FOUND", "Album not found", http.StatusNotFound)
	// ErrSongNotFound indicates the requested song does not exist.
	ErrSongNotFound = apperrors.New("SONG_NOT_FOUND", "Song not found", http.StatusNotFound)
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrOrderNotFound indicates no payment order matches the gateway order id.
	ErrOrderNotFound = apperrors.New("ORDER_NOT_FOUND", "Payment order not found", http.StatusNotFound)
	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "An account with this email already exists", http.StatusConflict)
	// ErrInvalidSignature is returned when a payment signature fails verification.
	ErrInvalidSignature = apperrors.New("PAYMENT_INVALID_SIGNATURE", "Payment signature verification failed", http.StatusBadRequest)
)
