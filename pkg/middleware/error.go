package middleware

import (
	"net/http"

	"taskops-controlplane/pkg/errutil"

	"github.com/gin-gonic/gin"
)

// Error renders the last handler error as a JSON body with the HTTP status
// derived from its CoreStatus. Non-domain errors become a plain 500.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil || c.Writer.Written() {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), v.JSON())
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    errutil.StatusInternal,
				"message": err.Error(),
			},
		})
	}
}
