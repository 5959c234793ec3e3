package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The API speaks the client's wire format: failures are
// {"error": "..."}, confirmations are {"message": "..."}.

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}
