package routes

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/cmd/archiva/types"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

// ContentRoutes serves and accepts the files of managed repositories.
// Uploads pass through auth.
func ContentRoutes(router gin.IRouter, repos RepositoryServiceInterface, auth gin.HandlerFunc) {
	content := router.Group("/repository/:repository")
	content.GET("/*path", handleGetContent(repos))
	content.HEAD("/*path", handleGetContent(repos))
	content.PUT("/*path", auth, handlePutContent(repos))
}

func contentPath(c *gin.Context) (string, bool) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	if p == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "path required"})
		return "", false
	}
	return p, true
}

func handleGetContent(repos RepositoryServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := contentPath(c)
		if !ok {
			return
		}
		content, err := repos.ManagedContent(c.Param("repository"))
		if err != nil {
			respondError(c, err)
			return
		}

		rc, err := content.Retrieve(c.Request.Context(), p)
		if err != nil {
			respondError(c, err)
			return
		}
		defer rc.Close()

		c.Header("Content-Type", utils.MimeType(p))
		c.Status(http.StatusOK)
		if c.Request.Method == http.MethodHead {
			return
		}
		if _, err := io.Copy(c.Writer, rc); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("failed to stream content")
		}
	}
}

func handlePutContent(repos RepositoryServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := contentPath(c)
		if !ok {
			return
		}
		repoID := c.Param("repository")
		content, err := repos.ManagedContent(repoID)
		if err != nil {
			respondError(c, err)
			return
		}

		if err := content.Store(c.Request.Context(), p, c.Request.Body); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, types.SuccessResponse{
			Message: fmt.Sprintf("stored %s", p),
			Data:    gin.H{"repository": repoID, "path": p},
		})
	}
}
