package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"invoicer/internal/apperr"
	"invoicer/internal/database"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(inv *model.Invoice) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-" + inv.InvoiceNumber), nil
}

type fixture struct {
	db       *gorm.DB
	invoices *invoiceService
	parties  PartyService
	audits   AuditService
	customer repository.CustomerRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
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
	customerRepo := repository.NewCustomerRepository(db)

	parties := NewPartyService(customerRepo, repository.NewCompanyProfileRepository(db), auditRepo, txManager, log)
	invoices := NewInvoiceService(repository.NewInvoiceRepository(db), auditRepo, parties, stubRenderer{}, txManager, log).(*invoiceService)
	invoices.now = func() time.Time { return time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC) }

	return &fixture{
		db:       db,
		invoices: invoices,
		parties:  parties,
		audits:   NewAuditService(auditRepo),
		customer: customerRepo,
	}
}

func validRequest() InvoiceRequest {
	return InvoiceRequest{
		Customer: model.PartySnapshot{Name: "Acme Corp", Email: "ap@acme.test"},
		Company:  model.PartySnapshot{Name: "Me LLC"},
		LineItems: []LineItemPayload{
			{ID: "a", Description: "Design", Quantity: 2, Rate: 50},
			{ID: "b", Description: "Hosting", Quantity: 1, Rate: 25.5},
		},
		Fees: model.FeeConfiguration{
			TaxRatePercent:       10,
			HasSurcharge:         true,
			SurchargePercent:     3,
			HasConvenienceFee:    true,
			ConvenienceFeeAmount: 2,
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", first.InvoiceNumber)
	assert.Equal(t, model.StatusDraft, first.Status)
	assert.Equal(t, "2024-05-17", first.IssueDate)
	assert.Equal(t, model.DefaultCurrency, first.Currency)
	assert.Equal(t, model.DefaultInvoiceTitle, first.InvoiceTitle)
	assert.Equal(t, model.DefaultFooterMessage, first.FooterMessage)

	require.Len(t, first.LineItems, 2)
	assert.InDelta(t, 100.0, first.LineItems[0].Amount, 1e-9)
	assert.InDelta(t, 125.5, first.Subtotal, 1e-9)
	assert.InDelta(t, 3.765, first.Surcharge, 1e-9)
	assert.InDelta(t, 2.0, first.ConvenienceFee, 1e-9)
	assert.InDelta(t, 13.1265, first.Tax, 1e-9)
	assert.InDelta(t, 144.3915, first.Total, 1e-9)
	assert.Equal(t, "144.39", first.Formatted.Total)

	second, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", second.InvoiceNumber)

	t.Run("custom number is kept and ignored by the sequence", func(t *testing.T) {
		req := validRequest()
		req.UseCustomNumber = true
		req.InvoiceNumber = " 2024-ACME-7 "
		custom, err := f.invoices.CreateInvoice(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "2024-ACME-7", custom.InvoiceNumber)
		assert.Equal(t, "INV-0003", f.invoices.NextInvoiceNumber(ctx))
	})
}

func TestCreateInvoice_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := map[string]func(*InvoiceRequest){
		"missing customer name": func(r *InvoiceRequest) { r.Customer.Name = "  " },
		"missing company name":  func(r *InvoiceRequest) { r.Company.Name = "" },
		"empty custom number":   func(r *InvoiceRequest) { r.UseCustomNumber = true },
		"negative rate":         func(r *InvoiceRequest) { r.LineItems[0].Rate = -1 },
		"negative quantity":     func(r *InvoiceRequest) { r.LineItems[1].Quantity = -0.5 },
		"negative tax rate":     func(r *InvoiceRequest) { r.Fees.TaxRatePercent = -5 },
		"bad issue date":        func(r *InvoiceRequest) { r.IssueDate = "05/17/2024" },
		"bad due date":          func(r *InvoiceRequest) { r.DueDate = "2024-13-01" },
		"unknown status":        func(r *InvoiceRequest) { r.Status = "sent" },
		"long currency":         func(r *InvoiceRequest) { r.Currency = "DOLLARS" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := f.invoices.CreateInvoice(ctx, req)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
		})
	}

	_, total, err := f.invoices.ListInvoices(ctx, InvoiceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreateInvoice_SavesParties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := validRequest()
	req.SaveCustomer = true
	req.SaveCompany = true
	_, err := f.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	req.Customer.Name = "ACME CORP"
	req.Customer.Email = "billing@acme.test"
	_, err = f.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	customers, err := f.parties.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "ACME CORP", customers[0].Name)
	assert.Equal(t, "billing@acme.test", customers[0].Email)

	companies, err := f.parties.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestUpdateInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Status = model.StatusOpen
	req.DueDate = "2024-06-16"
	req.Fees.IsTaxFree = true
	req.LineItems = req.LineItems[:1]

	updated, err := f.invoices.UpdateInvoice(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, model.StatusOpen, updated.Status)
	assert.Equal(t, "2024-06-16", updated.DueDate)
	assert.InDelta(t, 100.0, updated.Subtotal, 1e-9)
	assert.Zero(t, updated.Tax)
	assert.InDelta(t, 105.0, updated.Total, 1e-9)

	t.Run("switch to custom number", func(t *testing.T) {
		req.UseCustomNumber = true
		req.InvoiceNumber = "CUSTOM-1"
		got, err := f.invoices.UpdateInvoice(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "CUSTOM-1", got.InvoiceNumber)
	})

	t.Run("blank status keeps the stored one", func(t *testing.T) {
		_, err := f.invoices.UpdateStatus(ctx, created.ID, model.StatusPaid)
		require.NoError(t, err)

		req.Status = ""
		got, err := f.invoices.UpdateInvoice(ctx, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPaid, got.Status)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		_, err := f.invoices.UpdateInvoice(ctx, "6f1c1e9e-6d3e-4b8e-9a57-1d2f0f7c8a11", validRequest())
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.invoices.UpdateInvoice(ctx, "nope", validRequest())
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)

	paid, err := f.invoices.UpdateStatus(ctx, created.ID, model.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, paid.Status)

	// any status may follow any other
	back, err := f.invoices.UpdateStatus(ctx, created.ID, model.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, back.Status)

	_, err = f.invoices.UpdateStatus(ctx, created.ID, "archived")
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, f.invoices.DeleteInvoice(ctx, created.ID))
	_, err = f.invoices.GetInvoice(ctx, created.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(f.invoices.DeleteInvoice(ctx, created.ID)))

	logs, total, err := f.audits.GetAuditLogs(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
		assert.Equal(t, model.ActorSystem, l.Actor)
	}
	assert.ElementsMatch(t, []string{
		model.ActionCreateInvoice,
		model.ActionChangeStatus,
		model.ActionChangeStatus,
		model.ActionDeleteInvoice,
	}, actions)
}

func TestDuplicateInvoice(t *testing.T) {
	ctx := WithActor(context.Background(), "alice")
	f := newFixture(t)

	req := validRequest()
	req.Status = model.StatusPaid
	req.IssueDate = "2024-01-02"
	req.DueDate = "2024-02-01"
	original, err := f.invoices.CreateInvoice(ctx, req)
	require.NoError(t, err)

	dup, err := f.invoices.DuplicateInvoice(ctx, original.ID)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "INV-0001-COPY", dup.InvoiceNumber)
	assert.Equal(t, model.StatusDraft, dup.Status)
	assert.Equal(t, "2024-05-17", dup.IssueDate)
	assert.Empty(t, dup.DueDate)
	assert.Equal(t, original.LineItems, dup.LineItems)
	assert.InDelta(t, original.Total, dup.Total, 1e-9)

	// copies do not advance the sequence
	assert.Equal(t, "INV-0002", f.invoices.NextInvoiceNumber(ctx))

	logs, _, err := f.audits.GetAuditLogs(ctx, dup.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionDuplicateInvoice, logs[0].Action)
	assert.Equal(t, "alice", logs[0].Actor)
}

func TestLineItemOperations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)

	inserted, err := f.invoices.InsertLineItem(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, inserted.LineItems, 3)
	added := inserted.LineItems[2]
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, 1.0, added.Quantity)
	assert.InDelta(t, created.Total, inserted.Total, 1e-9)

	updated, err := f.invoices.UpdateLineItem(ctx, created.ID, added.ID, LineItemUpdateRequest{Field: "rate", Value: 10.0})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, updated.LineItems[2].Amount, 1e-9)
	assert.InDelta(t, 135.5, updated.Subtotal, 1e-9)

	stored, err := f.invoices.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, updated.Total, stored.Total, 1e-9)

	t.Run("negative value rejected", func(t *testing.T) {
		_, err := f.invoices.UpdateLineItem(ctx, created.ID, added.ID, LineItemUpdateRequest{Field: "quantity", Value: -2.0})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("wrong value type rejected", func(t *testing.T) {
		_, err := f.invoices.UpdateLineItem(ctx, created.ID, added.ID, LineItemUpdateRequest{Field: "description", Value: 3.0})
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("unknown item leaves invoice unchanged", func(t *testing.T) {
		got, err := f.invoices.UpdateLineItem(ctx, created.ID, "missing", LineItemUpdateRequest{Field: "rate", Value: 99.0})
		require.NoError(t, err)
		assert.Equal(t, stored.LineItems, got.LineItems)
		assert.Equal(t, stored.UpdatedAt, got.UpdatedAt)
	})

	moved, err := f.invoices.MoveLineItem(ctx, created.ID, added.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, added.ID, moved.LineItems[0].ID)
	assert.Equal(t, "a", moved.LineItems[1].ID)

	removed, err := f.invoices.RemoveLineItem(ctx, created.ID, "a")
	require.NoError(t, err)
	require.Len(t, removed.LineItems, 2)
	assert.InDelta(t, 35.5, removed.Subtotal, 1e-9)

	for _, it := range removed.LineItems {
		_, err = f.invoices.RemoveLineItem(ctx, created.ID, it.ID)
		require.NoError(t, err)
	}
	empty, err := f.invoices.GetInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, empty.LineItems)
	assert.Zero(t, empty.Subtotal)
	// the convenience fee is still taxed with no items
	assert.InDelta(t, 2.2, empty.Total, 1e-9)
}

func TestListInvoicesAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, status := range []string{model.StatusDraft, model.StatusOpen, model.StatusOverdue, model.StatusPaid, model.StatusCanceled} {
		req := validRequest()
		req.Status = status
		req.Fees = model.FeeConfiguration{IsTaxFree: true}
		_, err := f.invoices.CreateInvoice(ctx, req)
		require.NoError(t, err)
	}

	all, total, err := f.invoices.ListInvoices(ctx, InvoiceFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, all, 2)

	open, total, err := f.invoices.ListInvoices(ctx, InvoiceFilter{Status: model.StatusOpen})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, model.StatusOpen, open[0].Status)

	_, _, err = f.invoices.ListInvoices(ctx, InvoiceFilter{Status: "bogus"})
	assert.True(t, apperr.IsValidation(err))

	summary, err := f.invoices.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Invoices)
	assert.EqualValues(t, 2, summary.Outstanding.Count)
	assert.InDelta(t, 251.0, summary.Outstanding.Total, 1e-9)
	assert.Equal(t, "251.00", summary.Outstanding.Formatted)
	assert.EqualValues(t, 1, summary.Overdue.Count)
	assert.EqualValues(t, 1, summary.Paid.Count)
}

func TestPreviewTotals(t *testing.T) {
	f := newFixture(t)
	req := validRequest()

	res, err := f.invoices.PreviewTotals(context.Background(), PreviewRequest{LineItems: req.LineItems, Fees: req.Fees})
	require.NoError(t, err)
	assert.InDelta(t, 144.3915, res.Total, 1e-9)
	assert.Equal(t, "13.13", res.Formatted.Tax)
	assert.InDelta(t, 25.5, res.LineItems[1].Amount, 1e-9)

	_, err = f.invoices.PreviewTotals(context.Background(), PreviewRequest{Fees: model.FeeConfiguration{ConvenienceFeeAmount: -1}})
	assert.True(t, apperr.IsValidation(err))
}

type failingNumbers struct {
	repository.InvoiceRepository
}

func (failingNumbers) ListNumbers(context.Context) ([]string, error) {
	return nil, errors.New("connection reset")
}

func TestNextInvoiceNumber_Fallback(t *testing.T) {
	f := newFixture(t)
	f.invoices.invoiceRepo = failingNumbers{InvoiceRepository: f.invoices.invoiceRepo}
	assert.Equal(t, "INV-0001", f.invoices.NextInvoiceNumber(context.Background()))
}

func TestRenderPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.invoices.CreateInvoice(ctx, validRequest())
	require.NoError(t, err)

	pdf, inv, err := f.invoices.RenderPDF(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-INV-0001", string(pdf))
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)

	f.invoices.renderer = stubRenderer{err: errors.New("font missing")}
	_, _, err = f.invoices.RenderPDF(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, "failed to generate PDF", apperr.Hint(err))
}

func TestNewDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	draft, err := f.invoices.NewDraft(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", draft.InvoiceNumber)
	assert.Equal(t, model.StatusDraft, draft.Status)
	assert.Equal(t, "2024-05-17", draft.IssueDate)
	assert.Equal(t, model.DefaultInvoiceTitle, draft.InvoiceTitle)
	assert.Empty(t, draft.Company.Name)
	require.Len(t, draft.LineItems, 1)
	assert.NotEmpty(t, draft.LineItems[0].ID)
	assert.Equal(t, 1.0, draft.LineItems[0].Quantity)
	assert.Zero(t, draft.LineItems[0].Rate)

	_, err = f.parties.CreateCompany(ctx, PartyRequest{Name: "Me LLC", City: "Springfield", Logo: "aGVsbG8=", IsDefault: true})
	require.NoError(t, err)
	customer, err := f.parties.CreateCustomer(ctx, PartyRequest{Name: "Acme Corp", Email: "ap@acme.test"})
	require.NoError(t, err)

	draft, err = f.invoices.NewDraft(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PartySnapshot{Name: "Me LLC", City: "Springfield", Logo: "aGVsbG8="}, draft.Company)
	assert.Equal(t, model.PartySnapshot{Name: "Acme Corp", Email: "ap@acme.test"}, draft.Customer)

	// the draft saves as is once filled in
	saved, err := f.invoices.CreateInvoice(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", saved.InvoiceNumber)

	_, err = f.invoices.NewDraft(ctx, "6f1c1e9e-6d3e-4b8e-9a57-1d2f0f7c8a11")
	assert.True(t, apperr.IsNotFound(err))
}
