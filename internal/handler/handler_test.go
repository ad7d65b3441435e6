package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/model"
	"invoicer/internal/refdata"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type fakeScheduler struct {
	session, kind, field string
	snap                 model.PartySnapshot
	cancelled            string
}

func (f *fakeScheduler) Schedule(session, kind, field string, snap model.PartySnapshot) (bool, error) {
	f.session, f.kind, f.field, f.snap = session, kind, field, snap
	return len(snap.Name) >= 2, nil
}

func (f *fakeScheduler) CancelSession(session string) int {
	f.cancelled = session
	return 3
}

func newTestRouter(t *testing.T, scheduler AutosaveScheduler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	parties := service.NewPartyService(repository.NewCustomerRepository(db), repository.NewCompanyProfileRepository(db), auditRepo, txManager, log)
	invoices := service.NewInvoiceService(repository.NewInvoiceRepository(db), auditRepo, parties, render.NewRenderer(config.RenderConfig{}), txManager, log)

	r := gin.New()
	api := r.Group("")
	NewInvoiceHandler(invoices).RegisterRoutes(api)
	NewPartyHandler(parties).RegisterRoutes(api)
	NewAuditHandler(service.NewAuditService(auditRepo)).RegisterRoutes(api)
	NewOptionsHandler(refdata.Load()).RegisterRoutes(api)
	NewAutosaveHandler(scheduler).RegisterRoutes(api)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func invoicePayload() map[string]any {
	return map[string]any{
		"customer": map[string]any{"name": "Acme Corp"},
		"company":  map[string]any{"name": "Me LLC"},
		"line_items": []map[string]any{
			{"description": "Consulting", "quantity": 10, "rate": 10},
		},
		"fees": map[string]any{
			"tax_rate_percent":       10,
			"has_surcharge":          true,
			"surcharge_percent":      10,
			"has_convenience_fee":    true,
			"convenience_fee_amount": 5,
		},
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	w, env := do(t, r, http.MethodGet, "/api/invoices/next-number", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INV-0001", decode[map[string]string](t, env.Data)["invoice_number"])

	w, env = do(t, r, http.MethodPost, "/api/invoices", invoicePayload())
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	created := decode[service.InvoiceResponse](t, env.Data)
	assert.Equal(t, "INV-0001", created.InvoiceNumber)
	assert.InDelta(t, 11.5, created.Tax, 1e-9)
	assert.InDelta(t, 126.5, created.Total, 1e-9)
	assert.Equal(t, "126.50", created.Formatted.Total)
	require.Len(t, created.LineItems, 1)
	itemID := created.LineItems[0].ID

	w, env = do(t, r, http.MethodGet, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[service.InvoiceResponse](t, env.Data).ID)

	w, env = do(t, r, http.MethodPatch, "/api/invoices/"+created.ID+"/items/"+itemID, map[string]any{"field": "quantity", "value": 20})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.InDelta(t, 200.0, decode[service.InvoiceResponse](t, env.Data).Subtotal, 1e-9)

	w, env = do(t, r, http.MethodPost, "/api/invoices/"+created.ID+"/items", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	withTwo := decode[service.InvoiceResponse](t, env.Data)
	require.Len(t, withTwo.LineItems, 2)

	w, env = do(t, r, http.MethodPut, "/api/invoices/"+created.ID+"/items/"+withTwo.LineItems[1].ID+"/position", map[string]any{"index": 0})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.Equal(t, withTwo.LineItems[1].ID, decode[service.InvoiceResponse](t, env.Data).LineItems[0].ID)

	w, env = do(t, r, http.MethodDelete, "/api/invoices/"+created.ID+"/items/"+withTwo.LineItems[1].ID, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.Len(t, decode[service.InvoiceResponse](t, env.Data).LineItems, 1)

	w, env = do(t, r, http.MethodPatch, "/api/invoices/"+created.ID+"/status", map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.Equal(t, model.StatusPaid, decode[service.InvoiceResponse](t, env.Data).Status)

	w, env = do(t, r, http.MethodPost, "/api/invoices/"+created.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	assert.Equal(t, "INV-0001-COPY", decode[service.InvoiceResponse](t, env.Data).InvoiceNumber)

	w, env = do(t, r, http.MethodGet, "/api/invoices?status=paid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Items []service.InvoiceResponse `json:"items"`
		Total int64                     `json:"total"`
	}](t, env.Data)
	assert.EqualValues(t, 1, page.Total)

	w, env = do(t, r, http.MethodGet, "/api/invoices/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[service.SummaryResponse](t, env.Data)
	assert.EqualValues(t, 1, summary.Paid.Count)
	assert.EqualValues(t, 1, summary.Outstanding.Count)

	w, env = do(t, r, http.MethodGet, "/api/invoices/"+created.ID+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Total int64 `json:"total"`
	}](t, env.Data)
	assert.EqualValues(t, 6, history.Total)

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+created.ID+"/pdf", nil)
	pdf := httptest.NewRecorder()
	r.ServeHTTP(pdf, req)
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.Contains(t, pdf.Header().Get("Content-Disposition"), "invoice-INV-0001.pdf")
	assert.True(t, bytes.HasPrefix(pdf.Body.Bytes(), []byte("%PDF")))

	w, _ = do(t, r, http.MethodDelete, "/api/invoices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = do(t, r, http.MethodGet, "/api/invoices/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "invoice not found", env.Error)
}

func TestInvoiceErrors(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	payload := invoicePayload()
	payload["customer"] = map[string]any{"name": ""}
	w, env := do(t, r, http.MethodPost, "/api/invoices", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "customer name is required", env.Error)

	w, _ = do(t, r, http.MethodGet, "/api/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPatch, "/api/invoices/6f1c1e9e-6d3e-4b8e-9a57-1d2f0f7c8a11/items/x", map[string]any{"field": "amount", "value": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPut, "/api/invoices/6f1c1e9e-6d3e-4b8e-9a57-1d2f0f7c8a11/items/x/position", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/invoices?status=sent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculate(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	w, env := do(t, r, http.MethodPost, "/api/invoices/calculate", map[string]any{
		"line_items": []map[string]any{{"quantity": 4, "rate": 25}},
		"fees":       map[string]any{"tax_rate_percent": 10, "has_surcharge": true, "surcharge_percent": 10, "has_convenience_fee": true, "convenience_fee_amount": 5},
	})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	res := decode[service.PreviewResponse](t, env.Data)
	assert.InDelta(t, 100.0, res.Subtotal, 1e-9)
	assert.InDelta(t, 11.5, res.Tax, 1e-9)
	assert.Equal(t, "126.50", res.Formatted.Total)
}

func TestPartyRoutes(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	w, env := do(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "Globex", "email": "ap@globex.test"})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	customer := decode[service.CustomerResponse](t, env.Data)

	w, _ = do(t, r, http.MethodPost, "/api/customers", map[string]any{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPut, "/api/customers/"+customer.ID, map[string]any{"name": "Globex Corp"})
	require.Equal(t, http.StatusOK, w.Code, env.Error)

	w, env = do(t, r, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]service.CustomerResponse](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, "Globex Corp", list[0].Name)

	w, _ = do(t, r, http.MethodGet, "/api/company-profiles/default", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/company-profiles", map[string]any{"name": "Me LLC", "is_default": true})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	profile := decode[service.CompanyProfileResponse](t, env.Data)

	w, env = do(t, r, http.MethodGet, "/api/company-profiles/default", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, profile.ID, decode[service.CompanyProfileResponse](t, env.Data).ID)

	w, _ = do(t, r, http.MethodDelete, "/api/company-profiles/"+profile.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/customers/"+customer.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewDraft(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	w, env := do(t, r, http.MethodPost, "/api/company-profiles", map[string]any{"name": "Me LLC", "is_default": true})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	w, env = do(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	customer := decode[service.CustomerResponse](t, env.Data)

	w, env = do(t, r, http.MethodGet, "/api/invoices/draft?customer_id="+customer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	draft := decode[service.InvoiceRequest](t, env.Data)
	assert.Equal(t, "INV-0001", draft.InvoiceNumber)
	assert.Equal(t, "Me LLC", draft.Company.Name)
	assert.Equal(t, "Globex", draft.Customer.Name)
	assert.Len(t, draft.LineItems, 1)

	w, _ = do(t, r, http.MethodGet, "/api/invoices/draft?customer_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptions(t *testing.T) {
	r := newTestRouter(t, &fakeScheduler{})

	w, env := do(t, r, http.MethodGet, "/api/options", nil)
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode[refdata.Options](t, env.Data)
	assert.Contains(t, opts.USStates, "California")
	assert.Contains(t, opts.Statuses, model.StatusOverdue)
	assert.NotEmpty(t, opts.Currencies)
}

func TestAutosaveRoutes(t *testing.T) {
	sched := &fakeScheduler{}
	r := newTestRouter(t, sched)

	w, env := do(t, r, http.MethodPost, "/api/autosave/s1/customer", map[string]any{
		"field": "email",
		"party": map[string]any{"name": "Acme", "email": "a@acme.test"},
	})
	require.Equal(t, http.StatusAccepted, w.Code, env.Error)
	assert.True(t, decode[map[string]bool](t, env.Data)["scheduled"])
	assert.Equal(t, "s1", sched.session)
	assert.Equal(t, "customer", sched.kind)
	assert.Equal(t, "email", sched.field)
	assert.Equal(t, "a@acme.test", sched.snap.Email)

	w, _ = do(t, r, http.MethodPost, "/api/autosave/s1/customer", map[string]any{"party": map[string]any{"name": "Acme"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodDelete, "/api/autosave/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", sched.cancelled)
	assert.EqualValues(t, 3, decode[map[string]int](t, env.Data)["cancelled"])
}
