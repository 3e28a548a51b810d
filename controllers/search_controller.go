package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"nimbusdrive/services"
	"nimbusdrive/utils"
)

type SearchController struct {
	searchService *services.SearchService
}

func NewSearchController(searchService *services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search handles GET /search?q=...&skip=...&limit=...
func (sc *SearchController) Search(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "25"), 10, 64)

	results, err := sc.searchService.Search(c.Request.Context(), identity, c.Query("q"), skip, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Search complete", results)
}
