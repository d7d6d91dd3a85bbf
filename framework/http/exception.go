package http

import (
	"errors"
	"net/http"
)

// Exception is an error that carries an HTTP status. The pipeline renders
// it as {"statusCode", "message", "error"} when no filter handles it.
type Exception struct {
	Status  int
	Message string
	Name    string
}

// NewException creates an exception with an explicit status.
//
//	return nil, gohttp.NewException(http.StatusTeapot, "short and stout")
func NewException(status int, message string) *Exception {
	return &Exception{Status: status, Message: message, Name: "HttpException"}
}

func (e *Exception) Error() string { return e.Message }

// Response is the JSON body for the exception.
func (e *Exception) Response() map[string]any {
	return map[string]any{
		"statusCode": e.Status,
		"message":    e.Message,
		"error":      e.Name,
	}
}

// AsException reports whether err is (or wraps) an *Exception.
func AsException(err error) (*Exception, bool) {
	var e *Exception
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func named(status int, name, fallback string, message []string) *Exception {
	msg := fallback
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return &Exception{Status: status, Message: msg, Name: name}
}

// BadRequest is a 400; validation pipes return it.
func BadRequest(message ...string) *Exception {
	return named(http.StatusBadRequest, "BadRequestException", "Bad Request", message)
}

// Unauthorized is a 401.
func Unauthorized(message ...string) *Exception {
	return named(http.StatusUnauthorized, "UnauthorizedException", "Unauthorized", message)
}

// Forbidden is a 403; guard rejection produces it.
func Forbidden(message ...string) *Exception {
	return named(http.StatusForbidden, "ForbiddenException", "Forbidden", message)
}

// NotFound is a 404.
func NotFound(message ...string) *Exception {
	return named(http.StatusNotFound, "NotFoundException", "Not Found", message)
}

// Conflict is a 409.
func Conflict(message ...string) *Exception {
	return named(http.StatusConflict, "ConflictException", "Conflict", message)
}

// PayloadTooLarge is a 413; oversized request bodies produce it.
func PayloadTooLarge(message ...string) *Exception {
	return named(http.StatusRequestEntityTooLarge, "PayloadTooLargeException", "Payload Too Large", message)
}

// UnprocessableEntity is a 422.
func UnprocessableEntity(message ...string) *Exception {
	return named(http.StatusUnprocessableEntity, "UnprocessableEntityException", "Unprocessable Entity", message)
}

// InternalServerError is a 500.
func InternalServerError(message ...string) *Exception {
	return named(http.StatusInternalServerError, "InternalServerErrorException", "Internal Server Error", message)
}
