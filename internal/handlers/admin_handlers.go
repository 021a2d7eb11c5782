package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Bulk Product Upload ---
//

// BulkUploadProducts is the handler for POST /api/bulk-upload
// The multipart form carries a "products" JSON array and optional image_i
// files, where image_i belongs to the i-th descriptor only.
func (h *Handlers) BulkUploadProducts(c *gin.Context) {
	// 1. --- Parse Descriptors ---
	descs, err := store.ParseBulkDescriptors(c.PostForm("products"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	// 2. --- Store Images ---
	ctx := c.Request.Context()
	images, rejected := h.saveBulkImages(c, len(descs))
	for i, reason := range rejected {
		descs[i].Reject(reason)
	}

	// 3. --- Create Products ---
	result, err := h.Store.BulkCreateProducts(ctx, descs, images)
	if err != nil {
		for _, url := range images {
			h.discardUploads(ctx, url)
		}
		h.respondError(c, err)
		return
	}
	for _, skip := range result.Skipped {
		if url, ok := images[skip.Index]; ok {
			h.discardUploads(ctx, url)
		}
	}
	if len(result.Skipped) > 0 {
		h.Logger.InfoContext(ctx, "bulk upload skipped items",
			slog.Int("created", len(result.ProductIDs)),
			slog.Int("skipped", len(result.Skipped)))
	}

	// 4. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":     fmt.Sprintf("Successfully created %d products", len(result.ProductIDs)),
		"product_ids": result.ProductIDs,
		"skipped":     result.Skipped,
	})
}

// saveBulkImages stores every image_i file with 0 <= i < n and returns the
// URL per index, plus a reason per index whose file could not be stored.
// Files for other indexes are ignored.
func (h *Handlers) saveBulkImages(c *gin.Context, n int) (images map[int]string, rejected map[int]string) {
	images, rejected = map[int]string{}, map[int]string{}
	form, err := c.MultipartForm()
	if err != nil {
		return images, rejected
	}

	for key, files := range form.File {
		idx, ok := strings.CutPrefix(key, "image_")
		if !ok || len(files) == 0 {
			continue
		}
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 || i >= n {
			continue
		}

		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			rejected[i] = "image could not be read"
			continue
		}
		url, err := h.Media.Save(c.Request.Context(), "products", fh.Filename, f)
		f.Close()
		switch {
		case errors.Is(err, media.ErrUnsupportedType):
			rejected[i] = "unsupported image type"
		case err != nil:
			h.Logger.WarnContext(c.Request.Context(), "bulk image not stored", slog.Int("index", i), slog.Any("error", err))
			rejected[i] = "image could not be stored"
		default:
			images[i] = url
		}
	}
	return images, rejected
}
