package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/inventory"
	"github.com/cinehall/cinema-booking/internal/model"
	"github.com/cinehall/cinema-booking/internal/queue"
)

type memCatalog struct{ items []model.ConcessionItem }

func (m *memCatalog) LoadCatalog(context.Context) ([]model.ConcessionItem, error) {
	return m.items, nil
}

func (m *memCatalog) SaveCatalog(_ context.Context, items []model.ConcessionItem) error {
	m.items = items
	return nil
}

type recPublisher struct{ audits []queue.AuditEvent }

func (p *recPublisher) PublishAudit(_ context.Context, ev queue.AuditEvent) error {
	p.audits = append(p.audits, ev)
	return nil
}

func (p *recPublisher) PublishRefund(context.Context, queue.RefundEvent) error { return nil }

func newInventoryHandler(t *testing.T) (*AdminHandler, *recPublisher) {
	t.Helper()
	ledger := inventory.NewLedger(&memCatalog{}, zap.NewNop())
	require.NoError(t, ledger.Load(context.Background()))
	pub := &recPublisher{}
	return NewAdminHandler(nil, nil, ledger, nil, pub), pub
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWithdrawRequiresAReason(t *testing.T) {
	h, pub := newInventoryHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/v1/admin/inventory/withdraw", `{"name":"Iced Tea","quantity":3}`)
	require.NoError(t, h.Withdraw(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "reason")
	assert.Empty(t, pub.audits)
}

func TestWithdrawAuditsTheReason(t *testing.T) {
	h, pub := newInventoryHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/v1/admin/inventory/withdraw", `{"name":"Iced Tea","quantity":3,"reason":"expired"}`)
	require.NoError(t, h.Withdraw(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.audits, 1)
	assert.Equal(t, queue.KindStockChange, pub.audits[0].Kind)
	assert.Contains(t, pub.audits[0].Detail, "Iced Tea")
	assert.Contains(t, pub.audits[0].Detail, "expired")
}

func TestRestockAuditsTheMovement(t *testing.T) {
	h, pub := newInventoryHandler(t)
	e := echo.New()

	c, rec := postJSON(e, "/v1/admin/inventory/restock", `{"name":"Iced Tea","quantity":50}`)
	require.NoError(t, h.Restock(c))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, pub.audits, 1)
	assert.Equal(t, queue.KindStockChange, pub.audits[0].Kind)
	assert.Contains(t, pub.audits[0].Detail, "restock Iced Tea +50")
}
