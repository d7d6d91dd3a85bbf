package http_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

func TestExceptions_Defaults(t *testing.T) {
	cases := []struct {
		e      *gohttp.Exception
		status int
		msg    string
	}{
		{gohttp.BadRequest(), http.StatusBadRequest, "Bad Request"},
		{gohttp.Unauthorized(), http.StatusUnauthorized, "Unauthorized"},
		{gohttp.Forbidden(), http.StatusForbidden, "Forbidden"},
		{gohttp.NotFound(), http.StatusNotFound, "Not Found"},
		{gohttp.Conflict(), http.StatusConflict, "Conflict"},
		{gohttp.UnprocessableEntity(), http.StatusUnprocessableEntity, "Unprocessable Entity"},
		{gohttp.InternalServerError(), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.e.Status)
		assert.Equal(t, tc.msg, tc.e.Error())
	}
}

func TestExceptions_CustomMessage(t *testing.T) {
	e := gohttp.NotFound("Book 7 not found")
	assert.Equal(t, "Book 7 not found", e.Message)
	assert.Equal(t, "NotFoundException", e.Name)

	e = gohttp.NewException(http.StatusTeapot, "short and stout")
	assert.Equal(t, map[string]any{
		"statusCode": http.StatusTeapot,
		"message":    "short and stout",
		"error":      "HttpException",
	}, e.Response())
}

func TestAsException(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", gohttp.Conflict())
	e, ok := gohttp.AsException(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, e.Status)

	_, ok = gohttp.AsException(errors.New("plain"))
	assert.False(t, ok)
}
