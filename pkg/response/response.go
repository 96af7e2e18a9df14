package response

import (
	"errors"
	"net/http"

	"jots/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ListResponse wraps collection results: {"data": [...]}.
type ListResponse struct {
	Data interface{} `json:"data"`
}

// OK sends a 200 response with the object as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the object as the body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// List sends a 200 response with items wrapped in a data envelope.
func List(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, ListResponse{Data: items})
}

// Raw writes a pre-serialized JSON body with the given status.
// Used to replay cached idempotent responses byte for byte.
func Raw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json", body)
}

// Error sends an error response in the shape {"error":{"type":...,"message":...}}.
// It checks if err is an *apperror.AppError and maps it accordingly, otherwise
// returns 500 without leaking internal details.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, appErr.Envelope())
		return
	}

	internal := apperror.InternalError(err)
	c.JSON(internal.HTTPStatus, internal.Envelope())
}
