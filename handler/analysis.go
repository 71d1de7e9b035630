package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/swapnilgarg7/sync-sure/middleware"
	"github.com/swapnilgarg7/sync-sure/model"
	"github.com/swapnilgarg7/sync-sure/pkg/logger"
	"github.com/swapnilgarg7/sync-sure/service"
)

// DocumentArchive is the part of the archive service the history endpoints
// need. Nil when archival is disabled.
type DocumentArchive interface {
	PresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteDocument(ctx context.Context, objectName string) error
}

// AnalysisHandler exposes the analysis history kept by the store.
type AnalysisHandler struct {
	store   *service.AnalysisStore
	archive DocumentArchive
}

func NewAnalysisHandler(store *service.AnalysisStore, archive DocumentArchive) *AnalysisHandler {
	return &AnalysisHandler{store: store, archive: archive}
}

// List returns all analyses for the current tenant, newest first, without
// the report bodies.
func (h *AnalysisHandler) List(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	analyses := h.store.GetByTenant(tenant)

	result := make([]gin.H, len(analyses))
	for i, a := range analyses {
		result[i] = gin.H{
			"id":            a.ID,
			"contract_file": a.ContractFile,
			"invoice_file":  a.InvoiceFile,
			"status":        a.Status,
			"created_at":    a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at":    a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"analyses": result})
}

// Get returns a single analysis including its report
func (h *AnalysisHandler) Get(c *gin.Context) {
	analysis := h.tenantAnalysis(c)
	if analysis == nil {
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Download returns a time-limited URL for one of the archived documents.
// Query param: doc (contract|invoice).
func (h *AnalysisHandler) Download(c *gin.Context) {
	analysis := h.tenantAnalysis(c)
	if analysis == nil {
		return
	}

	var objectName string
	switch c.Query("doc") {
	case "contract":
		objectName = analysis.ContractArchive
	case "invoice":
		objectName = analysis.InvoiceArchive
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doc parameter, expected contract or invoice"})
		return
	}

	if h.archive == nil || objectName == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "No archived document for this analysis"})
		return
	}

	url, err := h.archive.PresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Delete removes an analysis from the history along with its archived
// documents. Archive deletion is best-effort; the history entry goes away
// regardless.
func (h *AnalysisHandler) Delete(c *gin.Context) {
	analysis := h.tenantAnalysis(c)
	if analysis == nil {
		return
	}

	if h.archive != nil {
		for _, objectName := range []string{analysis.ContractArchive, analysis.InvoiceArchive} {
			if objectName == "" {
				continue
			}
			if err := h.archive.DeleteDocument(c.Request.Context(), objectName); err != nil {
				logger.Warn(c.Request.Context(), "failed to delete archived document",
					"object", objectName,
					"error", err,
				)
			}
		}
	}

	h.store.Delete(analysis.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted"})
}

// tenantAnalysis looks up the :id analysis and enforces tenant scoping,
// writing the 404 itself when the lookup fails.
func (h *AnalysisHandler) tenantAnalysis(c *gin.Context) *model.Analysis {
	tenant := middleware.GetTenant(c)
	analysis := h.store.Get(c.Param("id"))
	if analysis == nil || analysis.Tenant != tenant {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return nil
	}
	return analysis
}
