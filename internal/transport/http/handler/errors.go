package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gopherblog/internal/app"
	"gopherblog/internal/transport/http/response"
)

// serviceError translates app-layer sentinel errors into the JSON envelope.
// Unexpected errors are logged with detail and reported generically; the
// specific messages are reserved for the client-caused kinds.
func serviceError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrEmptyQuery):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredential),
		errors.Is(err, app.ErrWrongPassword),
		errors.Is(err, app.ErrWrongSecurityAnswer):
		response.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrAccountDisabled),
		errors.Is(err, app.ErrNotOwner),
		errors.Is(err, app.ErrNotCommentOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrBlogNotFound),
		errors.Is(err, app.ErrCommentNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrEmailExists),
		errors.Is(err, app.ErrUsernameExists),
		errors.Is(err, app.ErrSlugTaken):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		log.Printf("%s: %v", internalMsg, err)
		response.Error(c, http.StatusInternalServerError, internalMsg)
	}
}
