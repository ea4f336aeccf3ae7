package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/cmd/archiva/middleware"
	"github.com/RhmnKpc/archiva/cmd/archiva/types"
)

// AdminRoutes sets up the admin API routes. Every route requires an admin token.
func AdminRoutes(api *gin.RouterGroup, auth gin.HandlerFunc, reloader ConfigReloader, scanner ScannerInterface, repos RepositoryServiceInterface) {
	admin := api.Group("/admin")
	admin.Use(auth)
	admin.Use(middleware.AdminOnly())

	admin.POST("/reload", handleReload(reloader))
	admin.POST("/scan/:repository", handleScan(scanner))
	admin.DELETE("/repositories/:repository/versions", handleDeleteVersion(repos))
}

func handleReload(reloader ConfigReloader) gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := reloader.Reload()
		if err != nil {
			respondError(c, err)
			return
		}
		if changed == nil {
			changed = []string{}
		}

		logger := log.Info().Strs("changed", changed)
		if claims, ok := middleware.GetClaimsFromContext(c); ok {
			logger = logger.Str("subject", claims.Subject)
		}
		logger.Msg("configuration reloaded")
		c.JSON(http.StatusOK, types.SuccessResponse{Message: "configuration reloaded", Data: gin.H{"changed": changed}})
	}
}

func handleScan(scanner ScannerInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := scanner.Scan(c.Request.Context(), c.Param("repository"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.SuccessResponse{Message: "scan completed", Data: stats})
	}
}

func handleDeleteVersion(repos RepositoryServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, artifactID, version := c.Query("groupId"), c.Query("artifactId"), c.Query("version")
		if groupID == "" || artifactID == "" || version == "" {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "groupId, artifactId and version are required"})
			return
		}
		content, err := repos.ManagedContent(c.Param("repository"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := content.DeleteVersion(c.Request.Context(), groupID, artifactID, version); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
