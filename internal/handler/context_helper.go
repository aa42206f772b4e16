package handler

import (
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/campus-enrollments/pkg/errors"
	"github.com/noah-isme/campus-enrollments/pkg/response"
)

const identifierLength = 36

// pathID reads the :id parameter and rejects anything that is not a
// 36-character identifier, writing the error response itself. Characters are
// counted the same way as the body identifier rules.
func pathID(c *gin.Context, entity string) (string, bool) {
	id := c.Param("id")
	if utf8.RuneCountInString(id) != identifierLength {
		response.Error(c, appErrors.InvalidInput("Provided "+entity+" id is invalid: "+id))
		return "", false
	}
	return id, true
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrBadRequest.Code, appErrors.ErrBadRequest.Status, appErrors.ErrBadRequest.Message)
}
