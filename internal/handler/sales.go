package handler

import (
	"net/http"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.LedgerService }

func NewSalesHandler(svc service.LedgerService) *SalesHandler {
	return &SalesHandler{svc: svc}
}

// Create sells from one container. Oversell answers 400 with the available
// quantity; a lock that cannot be taken after retries answers 409.
// @Summary Record a sale against a storage container
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateSaleRequest true "Sale"
// @Success 201 {object} dto.SaleCreatedResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Set(middleware.AuditResourceIDKey, resp.Sale.ID)
	c.JSON(http.StatusCreated, resp)
}

func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePayment godoc
// @Summary Update the payment status of a sale
// @Tags sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Param body body dto.UpdatePaymentRequest true "Payment"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} apierror.APIError
// @Router /sales/{id}/payment [patch]
func (h *SalesHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdatePaymentStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
