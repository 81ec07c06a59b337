package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
)

// Error writes the standardized `{"error": <hebrew message>}` shape. Internal
// errors are logged with technical detail; the client only ever sees the
// localized message.
func Error(c *gin.Context, log *logger.Logger, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError && log != nil {
		log.Error("internal error", "path", c.FullPath(), "err", err)
	}

	c.JSON(code, gin.H{"error": apperror.UserMessage(err)})
}

// Data writes the standardized `{"data": ...}` shape.
func Data(c *gin.Context, code int, payload interface{}) {
	c.JSON(code, gin.H{"data": payload})
}

// Message writes a `{"message": ...}` acknowledgment for mutations with no
// meaningful payload.
func Message(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}
