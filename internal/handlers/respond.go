package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/mailboxapp/mailbox/internal/apperr"
	"github.com/mailboxapp/mailbox/internal/auth"
	"github.com/mailboxapp/mailbox/pkg/i18n"
)

// Response is the envelope every endpoint answers with. Messages are
// translated at this edge; handlers speak English keys.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var production bool

// SetProduction suppresses internal error detail in 500 responses.
func SetProduction(p bool) {
	production = p
}

func respondOK(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func respondCreated(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: true,
		Message: i18n.Translate(message),
		Data:    data,
	})
}

// respondBindError answers a failed request binding. Validator failures are
// broken down per field; anything else is a malformed payload.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]FieldError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: bindingMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: i18n.Translate("invalid payload"),
			Errors:  fields,
		})
		return
	}

	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: i18n.Translate("invalid payload"),
	})
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "champ requis"
	case "email":
		return "doit être un email valide"
	case "min":
		return "trop court (minimum " + fe.Param() + ")"
	case "max":
		return "trop long (maximum " + fe.Param() + ")"
	default:
		return "valeur invalide"
	}
}

// respondError funnels every handler failure through one translation: typed
// application errors map to their status, storage constraint faults become
// client errors, and everything else is a 500 whose detail is hidden in
// production.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		c.JSON(statusFor(appErr.Kind), Response{
			Success: false,
			Message: i18n.Translate(appErr.Message),
		})
		return
	}

	switch {
	case apperr.IsUniqueConstraint(err):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: i18n.Translate("already exists"),
		})
		return
	case apperr.IsForeignKey(err):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Message: i18n.Translate("invalid reference"),
		})
		return
	case apperr.IsConnection(err):
		c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Message: i18n.Translate("service unavailable"),
		})
		return
	}

	message := i18n.Translate("internal server error")
	if !production {
		message = err.Error()
	}
	// The 5xx body logger picks this response up.
	c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: message,
	})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// pagination reads page and limit from the query string, clamped to sane
// bounds.
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// RequireOwner guards a :id route: the resource must exist and belong to
// the authenticated user.
func RequireOwner(registry *auth.OwnerRegistry, kind auth.ResourceKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		if err := registry.Check(c.Request.Context(), kind, id, currentUserID(c)); err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set("resource_id", id)
		c.Next()
	}
}

// resourceID returns the id checked by RequireOwner.
func resourceID(c *gin.Context) int64 {
	return c.GetInt64("resource_id")
}
