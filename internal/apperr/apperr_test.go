package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("create order: %w", New(NotFound, "Product %d not found", 7))
	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, Is(err, NotFound))
	assert.Equal(t, http.StatusNotFound, KindOf(err).Status())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, Internal))
}

func TestInvalidCarriesField(t *testing.T) {
	err := Invalid("rating", "Rating must be between 1 and 5")
	assert.Equal(t, http.StatusBadRequest, err.Kind.Status())
	assert.Equal(t, "Rating must be between 1 and 5", err.Fields["rating"])
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("stripe: timeout")
	err := Wrap(External, cause, "Payment provider unavailable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Kind.Status())
}
