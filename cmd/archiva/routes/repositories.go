package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RhmnKpc/archiva/cmd/archiva/types"
)

// RepositoryRoutes sets up the read-only repository routes
func RepositoryRoutes(api *gin.RouterGroup, repos RepositoryServiceInterface) {
	api.GET("/repositories", handleListRepositories(repos))
	api.GET("/repositories/:repository/versions", handleListVersions(repos))
}

func handleListRepositories(repos RepositoryServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		var response []types.RepositoryResponse
		for _, r := range repos.ManagedRepositories() {
			response = append(response, types.RepositoryResponse{
				ID:        r.ID(),
				Name:      r.Name(),
				Kind:      "managed",
				Layout:    r.Layout(),
				Location:  r.Location(),
				Releases:  r.Releases(),
				Snapshots: r.Snapshots(),
				Scanned:   r.Scanned(),
			})
		}
		for _, r := range repos.RemoteRepositories() {
			response = append(response, types.RepositoryResponse{
				ID:     r.ID(),
				Name:   r.Name(),
				Kind:   "remote",
				Layout: r.Layout(),
				URL:    r.URL(),
			})
		}
		if response == nil {
			response = []types.RepositoryResponse{}
		}
		c.JSON(http.StatusOK, response)
	}
}

func handleListVersions(repos RepositoryServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, artifactID := c.Query("groupId"), c.Query("artifactId")
		if groupID == "" || artifactID == "" {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "groupId and artifactId are required"})
			return
		}
		content, err := repos.ManagedContent(c.Param("repository"))
		if err != nil {
			respondError(c, err)
			return
		}

		versions, err := content.Versions(c.Request.Context(), groupID, artifactID)
		if err != nil {
			respondError(c, err)
			return
		}
		if versions == nil {
			versions = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"groupId": groupID, "artifactId": artifactID, "versions": versions})
	}
}
