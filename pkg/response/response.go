package response

import (
	"iter"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional metadata.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// WantsJSON reports whether the client asked for a buffered JSON list instead of an event stream.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

// Stream writes each element of seq as a server-sent event, flushing as it goes.
// The first element is pulled before any header is written, so an immediate
// failure is rendered as a regular error envelope. A failure after the first
// event cannot change the status code and is sent as a terminal "error" event.
func Stream[T any](c *gin.Context, seq iter.Seq2[T, error]) {
	next, stop := iter.Pull2(seq)
	defer stop()

	item, err, ok := next()
	if ok && err != nil {
		Error(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	ctx := c.Request.Context()
	for ; ok; item, err, ok = next() {
		if err != nil {
			_ = c.Error(err)
			c.SSEvent("error", Envelope{Error: appErrors.FromError(err)})
			c.Writer.Flush()
			return
		}
		c.SSEvent("message", item)
		c.Writer.Flush()
		if ctx.Err() != nil {
			return
		}
	}
}

// Collect drains seq into a slice for JSON rendering.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	items := make([]T, 0)
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
