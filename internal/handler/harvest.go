package handler

import (
	"net/http"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

type HarvestHandler struct{ svc service.HarvestService }

func NewHarvestHandler(svc service.HarvestService) *HarvestHandler {
	return &HarvestHandler{svc: svc}
}

func (h *HarvestHandler) Create(c *gin.Context) {
	var req dto.CreateHarvestRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(middleware.AuditResourceIDKey, resp.ID)
	c.JSON(http.StatusCreated, resp)
}

func (h *HarvestHandler) List(c *gin.Context) {
	var filter dto.HarvestFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HarvestHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
