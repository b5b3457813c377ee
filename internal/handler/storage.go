package handler

import (
	"net/http"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
)

// StorageHandler is read-only: containers are created by milling and closed
// by sales.
type StorageHandler struct{ svc service.LedgerService }

func NewStorageHandler(svc service.LedgerService) *StorageHandler {
	return &StorageHandler{svc: svc}
}

func (h *StorageHandler) List(c *gin.Context) {
	var filter dto.StorageFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListStorage(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) Available(c *gin.Context) {
	resp, err := h.svc.ListAvailableStorage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) Alerts(c *gin.Context) {
	resp, err := h.svc.StorageAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StorageHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetStorage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
