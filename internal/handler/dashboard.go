package handler

import (
	"net/http"

	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) ProfitTrends(c *gin.Context) {
	resp, err := h.svc.ProfitTrends(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DashboardHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
