package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Zeek-James/pem-zee/internal/dto"
	"github.com/Zeek-James/pem-zee/internal/handler"
	"github.com/Zeek-James/pem-zee/internal/middleware"
	"github.com/Zeek-James/pem-zee/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// stubLedger returns canned results for the sales and milling endpoints.
type stubLedger struct {
	service.LedgerService
	saleErr   error
	lastSale  dto.CreateSaleRequest
	paymentID uint
	auditID   interface{}
}

func (s *stubLedger) CreateSale(_ context.Context, req dto.CreateSaleRequest) (*dto.SaleCreatedResponse, error) {
	s.lastSale = req
	if s.saleErr != nil {
		return nil, s.saleErr
	}
	return &dto.SaleCreatedResponse{
		Sale:             dto.SaleResponse{ID: 9, StorageID: req.StorageID, QuantitySold: req.QuantitySold, ContainerID: "CPO001"},
		StorageRemaining: decimal.RequireFromString("12"),
	}, nil
}

func (s *stubLedger) UpdatePaymentStatus(_ context.Context, id uint, req dto.UpdatePaymentRequest) (*dto.SaleResponse, error) {
	s.paymentID = id
	return &dto.SaleResponse{ID: id, PaymentStatus: req.PaymentStatus}, nil
}

func (s *stubLedger) GetMilling(_ context.Context, id uint) (*dto.MillingResponse, error) {
	return nil, &service.LedgerError{Kind: service.ErrNotFound, Message: "Milling record 5 not found"}
}

func (s *stubLedger) ListStorage(_ context.Context, f dto.StorageFilter) ([]dto.StorageResponse, error) {
	return []dto.StorageResponse{{ID: 1, ContainerID: "CPO001"}}, nil
}

func newSalesRouter(ledger *stubLedger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	sales := handler.NewSalesHandler(ledger)
	r.POST("/api/sales", func(c *gin.Context) {
		sales.Create(c)
		ledger.auditID, _ = c.Get(middleware.AuditResourceIDKey)
	})
	r.PATCH("/api/sales/:id/payment", sales.UpdatePayment)
	milling := handler.NewMillingHandler(ledger)
	r.GET("/api/milling/:id", milling.Get)
	storage := handler.NewStorageHandler(ledger)
	r.GET("/api/storage", storage.List)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validSale = `{"sale_date":"2024-03-10","buyer_name":"Kano Refinery","storage_id":1,
	"quantity_sold":"20","price_per_kg":"1200","payment_status":"Pending"}`

func TestCreateSale_Created(t *testing.T) {
	ledger := &stubLedger{}
	w := do(newSalesRouter(ledger), http.MethodPost, "/api/sales", validSale)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, uint(9), ledger.auditID)
	assert.True(t, ledger.lastSale.QuantitySold.Equal(decimal.NewFromInt(20)))

	var resp dto.SaleCreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CPO001", resp.Sale.ContainerID)
}

func TestCreateSale_OversellIs400WithAvailable(t *testing.T) {
	available := decimal.RequireFromString("12")
	ledger := &stubLedger{saleErr: &service.LedgerError{
		Kind:      service.ErrValidation,
		Message:   "Cannot sell 13kg. Only 12.00kg available in this container.",
		Available: &available,
	}}
	w := do(newSalesRouter(ledger), http.MethodPost, "/api/sales", validSale)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "12.00", body["available"])
	assert.Contains(t, body["detail"], "Only 12.00kg")
}

func TestCreateSale_ConflictIs409(t *testing.T) {
	ledger := &stubLedger{saleErr: &service.LedgerError{Kind: service.ErrConflict, Message: "busy"}}
	w := do(newSalesRouter(ledger), http.MethodPost, "/api/sales", validSale)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateSale_UnexpectedErrorIsOpaque500(t *testing.T) {
	ledger := &stubLedger{saleErr: assert.AnError}
	w := do(newSalesRouter(ledger), http.MethodPost, "/api/sales", validSale)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestCreateSale_ValidationFailures(t *testing.T) {
	r := newSalesRouter(&stubLedger{})

	w := do(r, http.MethodPost, "/api/sales", `{"sale_date":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/sales", `{"sale_date":"2024-03-10","storage_id":1,"quantity_sold":"-1","price_per_kg":"10","payment_status":"Paid"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "required", body.Fields["BuyerName"])
	assert.Equal(t, "gt", body.Fields["QuantitySold"])
}

func TestUpdatePayment(t *testing.T) {
	ledger := &stubLedger{}
	r := newSalesRouter(ledger)

	w := do(r, http.MethodPatch, "/api/sales/4/payment", `{"payment_status":"Paid","payment_date":"2024-03-11"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(4), ledger.paymentID)

	w = do(r, http.MethodPatch, "/api/sales/abc/payment", `{"payment_status":"Paid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMilling_NotFound(t *testing.T) {
	w := do(newSalesRouter(&stubLedger{}), http.MethodGet, "/api/milling/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Milling record 5 not found")
}

func TestListStorage_RejectsUnknownStatus(t *testing.T) {
	r := newSalesRouter(&stubLedger{})

	w := do(r, http.MethodGet, "/api/storage?status=expired", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodGet, "/api/storage", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CPO001")
}

func TestHealth_WithoutDatabase(t *testing.T) {
	r := gin.New()
	r.GET("/api/health", handler.Health(nil, nil))

	w := do(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"ok":false,"db":"error","redis":"disabled"}`, w.Body.String())
}

func TestLogout_Acknowledges(t *testing.T) {
	r := gin.New()
	r.POST("/api/auth/logout", handler.NewAuthHandler(nil).Logout)

	w := do(r, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logout successful"}`, w.Body.String())
}
