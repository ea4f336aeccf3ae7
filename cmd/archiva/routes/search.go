package routes

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/RhmnKpc/archiva/cmd/archiva/types"
	"github.com/RhmnKpc/archiva/internal/index"
)

// SearchRoutes sets up the index search routes
func SearchRoutes(api *gin.RouterGroup, searchService SearchServiceInterface) {
	search := api.Group("/search")
	search.GET("/:repository", handleGeneralSearch(searchService))
	search.POST("/:repository/advanced", handleAdvancedSearch(searchService))
}

func handleGeneralSearch(searchService SearchServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		repoID := c.Param("repository")
		keyword := c.Query("q")

		results, err := searchService.General(c.Request.Context(), repoID, keyword)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.SearchResponse{
			Repository: repoID,
			Query:      keyword,
			Count:      len(results),
			Results:    results,
		})
	}
}

func handleAdvancedSearch(searchService SearchServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		repoID := c.Param("repository")

		var req types.AdvancedSearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid query", Details: err.Error()})
			return
		}
		q, err := buildQuery(req)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid query", Details: err.Error()})
			return
		}

		results, err := searchService.Advanced(c.Request.Context(), repoID, q)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.SearchResponse{
			Repository: repoID,
			Query:      q.String(),
			Count:      len(results),
			Results:    results,
		})
	}
}

func buildQuery(req types.AdvancedSearchRequest) (*index.CompoundQuery, error) {
	q := index.NewCompoundQuery()
	for _, clause := range req.Clauses {
		if !slices.Contains(index.Fields, clause.Field) {
			return nil, fmt.Errorf("unknown field: %s", clause.Field)
		}
		op, err := index.ParseOperator(clause.Operator)
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, index.Clause{
			Operator: op,
			Query:    index.SinglePhraseQuery{Field: clause.Field, Value: clause.Value},
		})
	}
	return q, nil
}
