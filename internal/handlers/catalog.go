package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/services"
	"github.com/soundbay/soundbay/pkg/response"
)

// CatalogHandler serves the public, cache-accelerated catalog endpoints.
type CatalogHandler struct {
	service *services.CatalogService
}

func NewCatalogHandler(db *gorm.DB, store cache.Store) (*CatalogHandler, error) {
	svc, err := services.NewCatalogService(db, store)
	if err != nil {
		return nil, err
	}
	return &CatalogHandler{service: svc}, nil
}

// GET /api/v1/album/all
func (h *CatalogHandler) ListAlbums(c *gin.Context) {
	albums, err := h.service.ListAlbums(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, albums)
}

// GET /api/v1/song/all
func (h *CatalogHandler) ListSongs(c *gin.Context) {
	songs, err := h.service.ListSongs(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, songs)
}

// GET /api/v1/album/:id
func (h *CatalogHandler) GetAlbum(c *gin.Context) {
	payload, err := h.service.GetAlbumWithSongs(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

// GET /api/v1/song/:id
func (h *CatalogHandler) GetSong(c *gin.Context) {
	song, err := h.service.GetSong(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, song)
}

// GET /api/v1/song/:id/details (auth optional; anonymous callers only get free songs marked playable)
func (h *CatalogHandler) GetSongDetails(c *gin.Context) {
	details, err := h.service.GetSongDetails(requestContext(c), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, details)
}

// GET /api/v1/my/purchased
func (h *CatalogHandler) ListPurchased(c *gin.Context) {
	songs, err := h.service.ListPurchased(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, songs)
}
