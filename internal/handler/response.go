package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/Baaaki/message-board/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation error locations, as reported in the "detail" list.
const (
	locBody  = "body"
	locPath  = "path"
	locQuery = "query"
)

// alreadyExistsStatus is the status for uniqueness violations.
const alreadyExistsStatus = http.StatusConflict

func init() {
	// Report json names ("email") instead of Go field names ("Email").
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

type AccountResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SenderID  uuid.UUID `json:"sender_id"`
}

func toAccountResponse(a models.Account, _ int) AccountResponse {
	return AccountResponse{ID: a.ID, Name: a.Name, Email: a.Email}
}

func toMessageResponse(m models.Message, _ int) MessageResponse {
	return MessageResponse{ID: m.ID, Content: m.Content, Timestamp: m.Timestamp, SenderID: m.SenderID}
}

// respondError maps service errors onto status codes. Anything that is not a
// domain error is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var notFound *service.NotFoundError
	var exists *service.AlreadyExistsError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound.Message})
	case errors.As(err, &exists):
		c.JSON(alreadyExistsStatus, gin.H{"message": exists.Message})
	default:
		logger.Log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func respondValidation(c *gin.Context, detail []string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}

// bindJSON binds and validates the request body. On failure it writes the
// 400 response and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Log.Warn("Request body rejected",
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondValidation(c, bindingDetail(err))
		return false
	}
	return true
}

// pathUUID parses the named path parameter. On failure it writes the 400
// response and returns false.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondValidation(c, []string{
			fmt.Sprintf("%s -> %s: Input should be a valid UUID, %s", locPath, name, err.Error()),
		})
		return uuid.Nil, false
	}
	return id, true
}

func bindingDetail(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		detail := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			detail = append(detail, fmt.Sprintf("%s -> %s: %s", locBody, fe.Field(), fieldMessage(fe)))
		}
		return detail
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []string{fmt.Sprintf("%s -> %s: Input should be a valid %s", locBody, typeErr.Field, typeErr.Type.Kind())}
	}

	return []string{fmt.Sprintf("%s: invalid JSON", locBody)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "email":
		return "value is not a valid email address"
	case "max":
		return "String should have at most " + fe.Param() + " characters"
	case "min":
		return "String should have at least " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
