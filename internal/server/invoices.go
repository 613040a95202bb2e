package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
)

type runInvoicesRequest struct {
	CustomerIDs []snowflake.ID `json:"customer_ids"`
	CutoffDate  *time.Time     `json:"cutoff_date"`
	// ShowWriteOffs overrides the configured default when present.
	ShowWriteOffs *bool `json:"show_write_offs"`
}

func (s *Server) buildRequest(req runInvoicesRequest) invoicingdomain.RunInvoicesRequest {
	showWriteOffs := s.cfg.ShowWriteOffs
	if req.ShowWriteOffs != nil {
		showWriteOffs = *req.ShowWriteOffs
	}
	return invoicingdomain.RunInvoicesRequest{
		CustomerIDs:   req.CustomerIDs,
		CutoffDate:    req.CutoffDate,
		ShowWriteOffs: showWriteOffs,
	}
}

// GenerateInvoices computes, renders and archives invoices for the
// requested customers. An empty customer list runs every active billable
// customer.
func (s *Server) GenerateInvoices(c *gin.Context) {
	var req runInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoicingSvc.RunInvoices(c.Request.Context(), s.buildRequest(req))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordInvoiceRun(len(resp.Results), len(resp.Failures))
	c.JSON(http.StatusOK, resp)
}

// ComputeInvoices runs the calculation pipeline without touching documents
// or storage. Useful for previews and reconciliation checks.
func (s *Server) ComputeInvoices(c *gin.Context) {
	var req runInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoicingSvc.ComputeOnly(c.Request.Context(), s.buildRequest(req))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordInvoiceRun(len(resp.Results), len(resp.Failures))
	c.JSON(http.StatusOK, resp)
}

// GetInvoiceDocument serves an archived invoice PDF by storage key.
func (s *Server) GetInvoiceDocument(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	doc, err := s.archiveSvc.Get(c.Request.Context(), key)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.DisplayName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
