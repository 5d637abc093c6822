package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`           // error code for frontend mapping
	Message string `json:"message"`         // human-readable detail
	Field   string `json:"field,omitempty"` // offending field for validation errors
}

// RespondWithError writes a JSON error body with the given status.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorCode,
		Message: message,
	})
}

// Respond maps a tagged error variant to its HTTP status and code.
// Anything outside the closed set is reported as an internal error.
func Respond(c *gin.Context, err error) {
	if v, ok := AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Error:   ValidationRequired,
			Message: v.Error(),
			Field:   v.Field,
		})
		return
	}

	if n, ok := AsNotFound(err); ok {
		code := ResourceNotFound
		switch n.Entity {
		case "store":
			code = StoreNotFound
		case "equipment":
			code = EquipmentNotFound
		}
		RespondWithError(c, http.StatusNotFound, code, n.Error())
		return
	}

	if cf, ok := AsConflict(err); ok {
		code := ResourceConflict
		switch cf.Resource {
		case "equipment code":
			code = EquipmentCodeConflict
		case "store code":
			code = StoreCodeExists
		}
		RespondWithError(c, http.StatusConflict, code, cf.Error())
		return
	}

	RespondWithError(c, http.StatusInternalServerError, InternalServerError, "internal server error")
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
