package handlers

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/session"
	"task-tracker-api/internal/tasks"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handler carries what the HTTP endpoints need. Build one per server.
type Handler struct {
	Tokens   *auth.Tokens
	Provider auth.IdentityProvider
	Sessions *session.Manager
	Tasks    *tasks.Service
	Hub      *realtime.Hub
}

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// currentSession returns the caller's session, rebuilding it if it expired
func (h *Handler) currentSession(c *gin.Context) (*session.Session, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return nil, false
	}
	sess, err := h.Sessions.Ensure(c.Request.Context(), claims.UserInfo())
	if err != nil {
		log.Printf("session for user %s unavailable: %v", claims.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tasks"})
		return nil, false
	}
	return sess, true
}

// bindError answers a request whose body or query failed to bind
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must have at least " + fe.Param() + " characters or items"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

// writeError maps workflow errors onto status codes
func writeError(c *gin.Context, err error) {
	var verr *tasks.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": verr.Fields})
	case errors.Is(err, tasks.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, tasks.ErrBucketFull):
		c.JSON(http.StatusConflict, gin.H{"error": "This status already holds the maximum number of tasks"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save changes"})
	}
}
