package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/auth"
	"github.com/soundbay/soundbay/internal/services"
	"github.com/soundbay/soundbay/pkg/response"
)

// UserHandler serves account registration, login, and profile endpoints.
type UserHandler struct {
	service   *services.UserService
	purchases *services.PurchaseService
}

func NewUserHandler(db *gorm.DB, jwt *auth.JWTService) (*UserHandler, error) {
	svc, err := services.NewUserService(db, jwt)
	if err != nil {
		return nil, err
	}
	purchases, err := services.NewPurchaseService(db)
	if err != nil {
		return nil, err
	}
	return &UserHandler{service: svc, purchases: purchases}, nil
}

// POST /api/v1/user/register
func (h *UserHandler) Register(c *gin.Context) {
	var body services.RegisterInput
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.service.Register(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// POST /api/v1/user/login
func (h *UserHandler) Login(c *gin.Context) {
	var body services.LoginInput
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.service.Login(requestContext(c), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GET /api/v1/user/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.GetByID(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/v1/user/purchased/:songID — ownership check used by the catalog
// and payment services.
func (h *UserHandler) HasPurchased(c *gin.Context) {
	owned, err := h.purchases.HasPurchased(requestContext(c), currentUserID(c), c.Param("songID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"purchased": owned})
}

// POST /api/v1/song/:id/playlist — toggle the song on the caller's playlist.
func (h *UserHandler) TogglePlaylist(c *gin.Context) {
	playlist, err := h.service.TogglePlaylist(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"playlist": playlist})
}
