package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, ErrorResponse{Error: msg, RequestID: GetRequestID(c)})
}

// respondFailure handles errors that do not re-render a form: NotFound
// becomes 404, a lost session goes to login, the rest is a logged 500.
func respondFailure(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		c.Redirect(http.StatusFound, loginRedirect(c.Request.URL.RequestURI()))
	default:
		logging.FromContext(c.Request.Context()).WithError(err).Error("request failed")
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// formErrors converts a validation failure into a field keyed error map.
// Errors without a field are reported under "__all__".
func formErrors(err error) map[string]string {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		field := verr.Field
		if field == "" {
			field = "__all__"
		}
		msg := verr.Msg
		if msg == "" {
			msg = verr.Error()
		}
		return map[string]string{field: msg}
	}
	return map[string]string{"__all__": err.Error()}
}

func isFormError(err error) bool {
	return domain.IsValidation(err) || domain.IsConflict(err) || errors.Is(err, domain.ErrInvalidCredentials)
}
