package handlers

import (
	"net/http"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

const maxReviewImages = 5

type ReviewInput struct {
	ProductID int64    `json:"product" form:"product" binding:"required,gt=0"`
	Title     string   `json:"title" form:"title" binding:"required,max=100"`
	Content   string   `json:"content" form:"content" binding:"required"`
	Rating    int      `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Images    []string `json:"images" form:"-" binding:"omitempty,max=5,dive,max=500"`
}

// CreateReview handles POST /api/reviews
// JSON bodies may carry image URLs; multipart bodies upload files under
// the "images" field.
func (h *Handlers) CreateReview(c *gin.Context) {
	var input ReviewInput
	multipart := strings.HasPrefix(c.ContentType(), "multipart/")

	if multipart {
		if err := c.ShouldBind(&input); err != nil {
			h.respondError(c, bindingError(err))
			return
		}
		urls, err := h.saveReviewImages(c)
		if err != nil {
			h.respondError(c, err)
			return
		}
		input.Images = urls
	} else if !h.bindJSON(c, &input) {
		return
	}

	review, err := h.Store.CreateReview(c.Request.Context(), store.NewReview{
		UserID:    currentUser(c),
		ProductID: input.ProductID,
		Title:     input.Title,
		Content:   input.Content,
		Rating:    input.Rating,
		Images:    input.Images,
	})
	if err != nil {
		if multipart {
			h.discardUploads(c.Request.Context(), input.Images...)
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handlers) saveReviewImages(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperr.Invalid("images", "Malformed multipart form")
	}
	files := form.File["images"]
	if len(files) > maxReviewImages {
		return nil, apperr.Invalid("images", "At most 5 images per review")
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			h.discardUploads(c.Request.Context(), urls...)
			return nil, err
		}
		url, err := h.Media.Save(c.Request.Context(), "reviews", fh.Filename, f)
		f.Close()
		if err != nil {
			h.discardUploads(c.Request.Context(), urls...)
			return nil, apperr.Invalid("images", "Only jpg, jpeg, png, gif and webp images are accepted")
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// GetReviews handles GET /api/reviews?product= (id or slug)
func (h *Handlers) GetReviews(c *gin.Context) {
	ref := strings.TrimSpace(c.Query("product"))
	if ref == "" {
		h.respondError(c, apperr.Invalid("product", "Product ID is required"))
		return
	}
	ctx := c.Request.Context()
	p, err := h.Store.GetProduct(ctx, ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	reviews, err := h.Store.ListReviews(ctx, p.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// GetMyReviews handles GET /api/reviews/mine
func (h *Handlers) GetMyReviews(c *gin.Context) {
	reviews, err := h.Store.ListUserReviews(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// DeleteReview handles DELETE /api/reviews/:id (own reviews only)
func (h *Handlers) DeleteReview(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Store.DeleteReview(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
