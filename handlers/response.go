package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tomato-api/apperror"
)

// respondError renders err with the status of its kind. Internal causes are logged and
// never sent to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(apperror.Status(kind), gin.H{"message": apperror.Message(err)})
}

// bindJSON binds the body into req and answers 400 with the failing fields when it does
// not validate.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation failed", "errors": fields})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed request body"})
		return false
	}
	return true
}
