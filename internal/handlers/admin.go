package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soundbay/soundbay/internal/cache"
	"github.com/soundbay/soundbay/internal/services"
	"github.com/soundbay/soundbay/internal/storage"
	apperrors "github.com/soundbay/soundbay/pkg/errors"
	"github.com/soundbay/soundbay/pkg/response"
)

// AdminHandler mutates the catalog. Uploaded files are stored before the
// database write so a failed upload never leaves a row pointing nowhere.
type AdminHandler struct {
	service  *services.CatalogAdminService
	uploader storage.Uploader
}

type updatePriceRequest struct {
	Price *float64 `json:"price" validate:"required,gte=0"`
}

func NewAdminHandler(db *gorm.DB, store cache.Store, uploader storage.Uploader) (*AdminHandler, error) {
	svc, err := services.NewCatalogAdminService(db, store)
	if err != nil {
		return nil, err
	}
	return &AdminHandler{service: svc, uploader: uploader}, nil
}

// POST /api/v1/album/new
func (h *AdminHandler) CreateAlbum(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" {
		response.Error(c, apperrors.NewBadRequest("title is required"))
		return
	}

	thumbnailURL, err := h.storeFile(c, "thumbnail", storage.KindAlbumArt)
	if err != nil {
		response.Error(c, err)
		return
	}

	album, err := h.service.CreateAlbum(requestContext(c), services.CreateAlbumInput{
		Title:       title,
		Description: description,
		Thumbnail:   thumbnailURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, album)
}

// POST /api/v1/song/new
func (h *AdminHandler) CreateSong(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	albumID := strings.TrimSpace(c.PostForm("album"))
	if title == "" {
		response.Error(c, apperrors.NewBadRequest("title is required"))
		return
	}
	if albumID == "" {
		response.Error(c, apperrors.NewBadRequest("album is required"))
		return
	}

	price := 0.0
	if raw := strings.TrimSpace(c.PostForm("price")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest("price must be a number"))
			return
		}
		price = parsed
	}

	audioURL, err := h.storeFile(c, "audio", storage.KindSongAudio)
	if err != nil {
		response.Error(c, err)
		return
	}

	var thumbnail *string
	if _, err := c.FormFile("thumbnail"); err == nil {
		url, err := h.storeFile(c, "thumbnail", storage.KindThumbnail)
		if err != nil {
			response.Error(c, err)
			return
		}
		thumbnail = &url
	}

	song, err := h.service.CreateSong(requestContext(c), services.CreateSongInput{
		Title:       title,
		Description: description,
		Audio:       audioURL,
		Thumbnail:   thumbnail,
		Price:       price,
		AlbumID:     albumID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, song)
}

// POST /api/v1/song/:id — attach or replace the song thumbnail.
func (h *AdminHandler) UpdateSongThumbnail(c *gin.Context) {
	url, err := h.storeFile(c, "thumbnail", storage.KindThumbnail)
	if err != nil {
		response.Error(c, err)
		return
	}

	song, err := h.service.UpdateSongThumbnail(requestContext(c), c.Param("id"), url)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, song)
}

// PATCH /api/v1/song/:id/price
func (h *AdminHandler) UpdateSongPrice(c *gin.Context) {
	var body updatePriceRequest
	if !bindAndValidate(c, &body) {
		return
	}

	song, err := h.service.UpdateSongPrice(requestContext(c), c.Param("id"), *body.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, song)
}

// DELETE /api/v1/album/:id
func (h *AdminHandler) DeleteAlbum(c *gin.Context) {
	if err := h.service.DeleteAlbum(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "album deleted", nil)
}

// DELETE /api/v1/song/:id
func (h *AdminHandler) DeleteSong(c *gin.Context) {
	if err := h.service.DeleteSong(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "song deleted", nil)
}

// storeFile uploads the named multipart file and returns its public URL.
func (h *AdminHandler) storeFile(c *gin.Context, field string, kind storage.Kind) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", apperrors.NewBadRequest(field + " file is required")
	}
	return h.storeHeader(c, header, kind)
}

func (h *AdminHandler) storeHeader(c *gin.Context, header *multipart.FileHeader, kind storage.Kind) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", apperrors.Wrap(err, "failed to read uploaded file")
	}
	defer file.Close()

	url, err := h.uploader.Upload(requestContext(c), kind, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return "", err
	}
	return url, nil
}
