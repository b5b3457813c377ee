package handler

import (
	"context"
	"path/filepath"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Excel streams an .xlsx export; ?type= selects the collections.
func (h *ReportsHandler) Excel(c *gin.Context) {
	h.serve(c, h.svc.Excel)
}

// PDF streams a .pdf export; ?type= selects the collections.
func (h *ReportsHandler) PDF(c *gin.Context) {
	h.serve(c, h.svc.PDF)
}

func (h *ReportsHandler) serve(c *gin.Context, render func(ctx context.Context, reportType string) (string, error)) {
	var q dto.ReportQuery
	if !bindQuery(c, &q) {
		return
	}
	path, err := render(c.Request.Context(), q.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
