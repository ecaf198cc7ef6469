package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/database/testutil"
	"github.com/soundbay/soundbay/internal/middleware"
)

func newUserTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	jwt, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "soundbay-test",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	handler, err := NewUserHandler(db, jwt)
	require.NoError(t, err)

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/user/register", handler.Register)
	v1.POST("/user/login", handler.Login)
	v1.GET("/user/me", middleware.Auth(jwt), handler.Me)
	v1.GET("/user/purchased/:songID", middleware.Auth(jwt), handler.HasPurchased)
	return router
}

func postJSON(router *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginAndMe(t *testing.T) {
	router := newUserTestRouter(t)

	rec := postJSON(router, "/api/v1/user/register",
		`{"name":"Asha","email":"asha@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Data.Token)

	rec = postJSON(router, "/api/v1/user/login",
		`{"email":"asha@example.com","password":"correct-horse"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Data.Token)
	meRec := httptest.NewRecorder()
	router.ServeHTTP(meRec, req)
	assert.Equal(t, http.StatusOK, meRec.Code)

	// Password hash must never appear in responses.
	assert.NotContains(t, meRec.Body.String(), "password_hash")
}

func TestRegisterValidation(t *testing.T) {
	router := newUserTestRouter(t)

	rec := postJSON(router, "/api/v1/user/register", `{"email":"bad"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(router, "/api/v1/user/register", `not-json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHasPurchasedDefaultsFalse(t *testing.T) {
	router := newUserTestRouter(t)

	rec := postJSON(router, "/api/v1/user/register",
		`{"name":"Asha","email":"asha@example.com","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/purchased/some-song-id", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Data.Token)
	checkRec := httptest.NewRecorder()
	router.ServeHTTP(checkRec, req)
	assert.Equal(t, http.StatusOK, checkRec.Code)
	assert.Contains(t, checkRec.Body.String(), `"purchased":false`)
}

func TestMeRequiresAuth(t *testing.T) {
	router := newUserTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
