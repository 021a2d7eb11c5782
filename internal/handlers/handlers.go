// Package handlers is the gin HTTP layer. Handlers bind and validate input,
// call the store, and translate *apperr.Error into the JSON error body.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/email"
	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/01moynul/storefront-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// PageConfig is the listing page size policy.
type PageConfig struct {
	Default int
	Max     int
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Store    *store.Store
	Tokens   *auth.TokenManager
	Media    media.Storage
	Mailer   email.Sender
	Payments payment.Provider // nil when no provider is configured
	Pricing  pricing.Policy
	Pages    PageConfig
	Currency string
	Logger   *slog.Logger
}

type errorBody struct {
	Code   apperr.Kind       `json:"code"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError writes err as the standard error body. Errors outside the
// taxonomy are logged and reported as a generic internal error.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		h.Logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, errorBody{Code: apperr.Internal, Error: "Internal server error"})
		return
	}
	if e.Kind == apperr.Internal || e.Kind == apperr.External {
		h.Logger.ErrorContext(c.Request.Context(), e.Detail,
			slog.String("path", c.FullPath()),
			slog.Any("error", e.Err))
	}
	c.JSON(e.Kind.Status(), errorBody{Code: e.Kind, Error: e.Detail, Fields: e.Fields})
}

// bindJSON decodes the body into dst and converts binding failures into a
// field-level validation error. It reports whether the handler may go on.
func (h *Handlers) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindBodyWith(dst, binding.JSON)
	if err == nil {
		return true
	}
	e := bindingError(err)
	if e.Fields == nil {
		if body, ok := c.Get(gin.BodyBytesKey); ok {
			if b, ok := body.([]byte); ok {
				if fields := decimalFieldErrors(b, dst); len(fields) > 0 {
					e = &apperr.Error{Kind: apperr.Validation, Detail: "Invalid request", Fields: fields}
				}
			}
		}
	}
	h.respondError(c, e)
	return false
}

func bindingError(err error) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldPath(fe)] = fieldMessage(fe)
		}
		return &apperr.Error{Kind: apperr.Validation, Detail: "Invalid request", Fields: fields}
	}
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) && terr.Field != "" {
		return &apperr.Error{Kind: apperr.Validation, Detail: "Invalid request",
			Fields: map[string]string{terr.Field: "Invalid value"}}
	}
	if errors.Is(err, io.EOF) {
		return apperr.New(apperr.Validation, "Request body is required")
	}
	return apperr.Wrap(apperr.Validation, err, "Malformed JSON body")
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// decimalFieldErrors names the top-level decimal fields of dst whose value in
// body is not a number. decimal.Decimal reports its own parse errors without
// the field they came from.
func decimalFieldErrors(body []byte, dst any) map[string]string {
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	fields := map[string]string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft != decimalType {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		v, ok := raw[name]
		if !ok {
			continue
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(v); err != nil {
			fields[name] = "Enter a valid amount"
		}
	}
	return fields
}

// fieldPath drops the struct name from the namespace: "items[1].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", fe.Param())
	default:
		return "Invalid value"
	}
}

// currentUser returns the ID AuthMiddleware stored on the context.
func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid(name, "Must be a positive integer")
	}
	return id, nil
}
