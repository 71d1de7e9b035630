package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/swapnilgarg7/sync-sure/pkg/vectorstore"
)

// PageSearcher queries the sample-document similarity index.
type PageSearcher interface {
	Search(ctx context.Context, query string, limit int, docType string) ([]vectorstore.Result, error)
}

type IndexHandler struct {
	index PageSearcher
}

func NewIndexHandler(index PageSearcher) *IndexHandler {
	return &IndexHandler{index: index}
}

// Search returns the indexed sample pages most similar to the query.
// Query params: q (required), k (result count), type (contract|invoice).
func (h *IndexHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter: q"})
		return
	}

	limit := 0
	if k := c.Query("k"); k != "" {
		n, err := strconv.Atoi(k)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid k parameter"})
			return
		}
		limit = n
	}

	docType := c.Query("type")
	if docType != "" && docType != "contract" && docType != "invoice" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type parameter"})
		return
	}

	results, err := h.index.Search(c.Request.Context(), query, limit, docType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	hits := make([]gin.H, len(results))
	for i, r := range results {
		hits[i] = gin.H{
			"id":      r.ID,
			"score":   r.Score,
			"payload": r.Payload,
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": hits})
}
