package handlers

import (
	"net/http"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// --- User Registration ---

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"omitempty,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if !h.bindJSON(c, &input) {
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	user, err := h.Store.CreateUser(c.Request.Context(), models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if !h.bindJSON(c, &input) {
		return
	}

	invalid := apperr.New(apperr.Unauthenticated, "Invalid email or password")

	user, err := h.Store.GetUserByEmail(c.Request.Context(), input.Email)
	if apperr.Is(err, apperr.NotFound) {
		h.respondError(c, invalid)
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	ok, err := auth.CheckPassword(user.PasswordHash, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		h.respondError(c, invalid)
		return
	}

	token, err := h.Tokens.GenerateToken(user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// GetMe handles GET /api/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	me, err := h.Store.GetMe(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}

// UpdateMe handles PUT /api/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	var input store.ProfileUpdate
	if !h.bindJSON(c, &input) {
		return
	}
	me, err := h.Store.UpdateMe(c.Request.Context(), currentUser(c), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
