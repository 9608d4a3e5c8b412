package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcovaldez/tiendapos-backend/internal/identity"
	inventorysvc "github.com/marcovaldez/tiendapos-backend/internal/inventory"
	"github.com/marcovaldez/tiendapos-backend/pkg/enums"
)

type stubInventoryService struct {
	level    *inventorysvc.StockLevel
	report   *inventorysvc.LowStockReport
	err      error
	adjusted *inventorysvc.AdjustStockInput
	lowStock *inventorysvc.LowStockInput
}

func (s *stubInventoryService) AdjustStock(ctx context.Context, actor identity.Actor, input inventorysvc.AdjustStockInput) (*inventorysvc.StockLevel, error) {
	s.adjusted = &input
	return s.level, s.err
}

func (s *stubInventoryService) ReceiveStock(ctx context.Context, actor identity.Actor, input inventorysvc.ReceiveStockInput) (*inventorysvc.StockLevel, error) {
	return s.level, s.err
}

func (s *stubInventoryService) GetLevel(ctx context.Context, actor identity.Actor, businessID, productID uuid.UUID, branchID *uuid.UUID) (*inventorysvc.StockLevel, error) {
	return s.level, s.err
}

func (s *stubInventoryService) ListLowStock(ctx context.Context, actor identity.Actor, input inventorysvc.LowStockInput) (*inventorysvc.LowStockReport, error) {
	s.lowStock = &input
	return s.report, s.err
}

func TestAdjustStockSuccess(t *testing.T) {
	businessID := uuid.New()
	productID := uuid.New()
	stub := &stubInventoryService{level: &inventorysvc.StockLevel{
		ProductID: productID,
		Mode:      enums.InventoryModeShared,
		Qty:       12,
	}}

	body := `{"product_id":"` + productID.String() + `","new_qty":12,"reason":"conteo fisico"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust", strings.NewReader(body))
	req = req.WithContext(ownerContext(businessID))

	rec := httptest.NewRecorder()
	AdjustStock(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.adjusted)
	assert.Equal(t, businessID, stub.adjusted.BusinessID)
	assert.Equal(t, 12, stub.adjusted.NewQty)
	assert.Equal(t, "conteo fisico", stub.adjusted.Reason)
}

func TestAdjustStockRejectsNegativeQty(t *testing.T) {
	businessID := uuid.New()
	stub := &stubInventoryService{}

	body := `{"product_id":"` + uuid.NewString() + `","new_qty":-3}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/adjust", strings.NewReader(body))
	req = req.WithContext(ownerContext(businessID))

	rec := httptest.NewRecorder()
	AdjustStock(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.adjusted)
}

func TestListLowStockDefaultsThreshold(t *testing.T) {
	businessID := uuid.New()
	stub := &stubInventoryService{report: &inventorysvc.LowStockReport{
		Mode:      enums.InventoryModeShared,
		Threshold: 5,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/low-stock", nil)
	req = req.WithContext(ownerContext(businessID))

	rec := httptest.NewRecorder()
	ListLowStock(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.lowStock)
	assert.Equal(t, 5, stub.lowStock.Threshold)
	assert.Nil(t, stub.lowStock.BranchID)
}
