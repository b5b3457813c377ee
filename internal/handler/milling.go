package handler

import (
	"net/http"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

type MillingHandler struct{ svc service.LedgerService }

func NewMillingHandler(svc service.LedgerService) *MillingHandler {
	return &MillingHandler{svc: svc}
}

// Create records a milling run and provisions its storage container.
// @Summary Record a milling run
// @Tags milling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateMillingRequest true "Milling run"
// @Success 201 {object} dto.MillingCreatedResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /milling [post]
func (h *MillingHandler) Create(c *gin.Context) {
	var req dto.CreateMillingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateMilling(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(middleware.AuditResourceIDKey, resp.Milling.ID)
	c.JSON(http.StatusCreated, resp)
}

func (h *MillingHandler) List(c *gin.Context) {
	var filter dto.MillingFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMilling(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MillingHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetMilling(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
