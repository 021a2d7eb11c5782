package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/gin-gonic/gin"
)

var uploadFolders = map[string]bool{"products": true, "reviews": true, "profiles": true, "misc": true}

// saveUpload stores the multipart file under field and returns its URL.
func (h *Handlers) saveUpload(c *gin.Context, field, folder string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", apperr.Invalid(field, "No file uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	url, err := h.Media.Save(c.Request.Context(), folder, fh.Filename, f)
	if errors.Is(err, media.ErrUnsupportedType) {
		return "", apperr.Invalid(field, "Only jpg, jpeg, png, gif and webp images are accepted")
	}
	return url, err
}

// discardUploads removes files stored for a request that then failed.
func (h *Handlers) discardUploads(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if err := h.Media.Delete(ctx, url); err != nil {
			h.Logger.WarnContext(ctx, "discard upload", slog.String("url", url), slog.Any("error", err))
		}
	}
}

// UploadFile handles POST /api/uploads (multipart: file, folder)
// It returns the public URL of the stored file.
func (h *Handlers) UploadFile(c *gin.Context) {
	folder := strings.ToLower(strings.TrimSpace(c.PostForm("folder")))
	if !uploadFolders[folder] {
		folder = "misc"
	}

	url, err := h.saveUpload(c, "file", folder)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
