package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"invoicer/internal/apperr"
	"invoicer/internal/ledger"
	"invoicer/internal/model"
	"invoicer/internal/numbering"
	"invoicer/internal/refdata"
	"invoicer/internal/repository"
	"invoicer/internal/totals"
	"invoicer/pkg/datefmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type LineItemPayload struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// InvoiceRequest is the full editable state of an invoice. Updates replace
// every field; amounts and totals are always derived server side.
type InvoiceRequest struct {
	UseCustomNumber bool                   `json:"use_custom_number"`
	InvoiceNumber   string                 `json:"invoice_number"`
	Status          string                 `json:"status"`
	IssueDate       string                 `json:"issue_date"`
	DueDate         string                 `json:"due_date"`
	Currency        string                 `json:"currency"`
	Customer        model.PartySnapshot    `json:"customer"`
	Company         model.PartySnapshot    `json:"company"`
	LineItems       []LineItemPayload      `json:"line_items"`
	Fees            model.FeeConfiguration `json:"fees"`
	Notes           string                 `json:"notes"`
	InvoiceTitle    string                 `json:"invoice_title"`
	FooterMessage   string                 `json:"footer_message"`
	Template        string                 `json:"template"`
	SaveCustomer    bool                   `json:"save_customer"`
	SaveCompany     bool                   `json:"save_company"`
}

type PreviewRequest struct {
	LineItems []LineItemPayload      `json:"line_items"`
	Fees      model.FeeConfiguration `json:"fees"`
}

type LineItemUpdateRequest struct {
	Field string `json:"field" binding:"required,oneof=description quantity rate"`
	Value any    `json:"value"`
}

type MoveLineItemRequest struct {
	Index *int `json:"index" binding:"required"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type InvoiceFilter struct {
	Status string
	Page   int
	Limit  int
}

// FormattedTotals are the money figures rounded to cents for display
type FormattedTotals struct {
	Subtotal       string `json:"subtotal"`
	Surcharge      string `json:"surcharge"`
	ConvenienceFee string `json:"convenience_fee"`
	Tax            string `json:"tax"`
	Total          string `json:"total"`
}

type InvoiceResponse struct {
	ID            string                 `json:"id"`
	InvoiceNumber string                 `json:"invoice_number"`
	Status        string                 `json:"status"`
	IssueDate     string                 `json:"issue_date"`
	DueDate       string                 `json:"due_date"`
	Currency      string                 `json:"currency"`
	Customer      model.PartySnapshot    `json:"customer"`
	Company       model.PartySnapshot    `json:"company"`
	LineItems     []model.LineItem       `json:"line_items"`
	Fees          model.FeeConfiguration `json:"fees"`
	totals.Totals
	Formatted     FormattedTotals `json:"formatted"`
	Notes         string          `json:"notes"`
	InvoiceTitle  string          `json:"invoice_title"`
	FooterMessage string          `json:"footer_message"`
	Template      string          `json:"template"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

type PreviewResponse struct {
	LineItems []model.LineItem `json:"line_items"`
	totals.Totals
	Formatted FormattedTotals `json:"formatted"`
}

type SummaryBucket struct {
	Count     int64   `json:"count"`
	Total     float64 `json:"total"`
	Formatted string  `json:"formatted"`
}

// SummaryResponse aggregates stored totals; outstanding is draft plus open
type SummaryResponse struct {
	Outstanding SummaryBucket `json:"outstanding"`
	Overdue     SummaryBucket `json:"overdue"`
	Paid        SummaryBucket `json:"paid"`
	Invoices    int64         `json:"invoices"`
}

// PDFRenderer draws a stored invoice
type PDFRenderer interface {
	Render(inv *model.Invoice) ([]byte, error)
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req InvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	DeleteInvoice(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string) (InvoiceResponse, error)
	DuplicateInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	NextInvoiceNumber(ctx context.Context) string
	NewDraft(ctx context.Context, customerID string) (InvoiceRequest, error)

	InsertLineItem(ctx context.Context, id string) (InvoiceResponse, error)
	UpdateLineItem(ctx context.Context, id, itemID string, req LineItemUpdateRequest) (InvoiceResponse, error)
	RemoveLineItem(ctx context.Context, id, itemID string) (InvoiceResponse, error)
	MoveLineItem(ctx context.Context, id, itemID string, index int) (InvoiceResponse, error)

	PreviewTotals(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	Summary(ctx context.Context) (SummaryResponse, error)
	RenderPDF(ctx context.Context, id string) ([]byte, *model.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	parties     PartyService
	renderer    PDFRenderer
	txManager   repository.TransactionManager
	audit       auditor
	log         *zap.Logger
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	parties PartyService,
	renderer PDFRenderer,
	txManager repository.TransactionManager,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		parties:     parties,
		renderer:    renderer,
		txManager:   txManager,
		audit:       auditor{repo: auditRepo, log: log},
		log:         log.Named("invoice"),
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req InvoiceRequest) (InvoiceResponse, error) {
	if err := validateInvoiceRequest(req); err != nil {
		return InvoiceResponse{}, err
	}

	var invoice model.Invoice
	s.applyRequest(&invoice, req)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.UseCustomNumber {
			invoice.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
		} else {
			invoice.InvoiceNumber = s.nextNumber(txCtx)
		}

		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		return s.audit.record(txCtx, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, totals.FromInvoice(invoice))
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.log.Info("invoice created", zap.String("id", invoice.ID.String()), zap.String("number", invoice.InvoiceNumber))
	s.saveParties(ctx, req)
	return toInvoiceResponse(invoice), nil
}

// UpdateInvoice replaces every editable field. The stored number is kept
// unless the caller switches to a custom one.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req InvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return InvoiceResponse{}, err
	}
	if err := validateInvoiceRequest(req); err != nil {
		return InvoiceResponse{}, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return apperr.FromRepo(findErr, "invoice")
		}

		s.applyRequest(invoice, req)
		if req.UseCustomNumber {
			invoice.InvoiceNumber = strings.TrimSpace(req.InvoiceNumber)
		}

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		return s.audit.record(txCtx, model.ActionUpdateInvoice, invoice.ID.String(), invoice.InvoiceNumber, totals.FromInvoice(*invoice))
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.saveParties(ctx, req)
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return InvoiceResponse{}, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, apperr.FromRepo(err, "invoice")
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Status != "" && !model.IsValidStatus(filter.Status) {
		return nil, 0, apperr.Validationf("unknown status %q", filter.Status)
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, apperr.FromRepo(err, "invoices")
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		if err := s.invoiceRepo.Delete(txCtx, invoiceID); err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		return s.audit.record(txCtx, model.ActionDeleteInvoice, invoice.ID.String(), invoice.InvoiceNumber, nil)
	})
}

// UpdateStatus sets any status from any other; there are no transition rules
func (s *invoiceService) UpdateStatus(ctx context.Context, id, status string) (InvoiceResponse, error) {
	if !model.IsValidStatus(status) {
		return InvoiceResponse{}, apperr.Validationf("unknown status %q", status)
	}
	return s.mutate(ctx, id, func(inv *model.Invoice) (string, any, error) {
		from := inv.Status
		inv.Status = status
		return model.ActionChangeStatus, map[string]string{"from": from, "to": status}, nil
	})
}

// DuplicateInvoice copies an invoice as a new draft numbered <original>-COPY,
// issued today with no due date
func (s *invoiceService) DuplicateInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return InvoiceResponse{}, err
	}

	var copied model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		original, err := s.invoiceRepo.FindByID(txCtx, invoiceID)
		if err != nil {
			return apperr.FromRepo(err, "invoice")
		}

		copied = *original
		copied.ID = uuid.Nil
		copied.InvoiceNumber = original.InvoiceNumber + "-COPY"
		copied.Status = model.StatusDraft
		copied.IssueDate = datefmt.Today(s.now())
		copied.DueDate = ""
		copied.LineItems = append([]model.LineItem(nil), original.LineItems...)
		copied.CreatedAt = time.Time{}
		copied.UpdatedAt = time.Time{}

		if err := s.invoiceRepo.Create(txCtx, &copied); err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		return s.audit.record(txCtx, model.ActionDuplicateInvoice, copied.ID.String(), copied.InvoiceNumber,
			map[string]string{"source_id": original.ID.String()})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(copied), nil
}

// NextInvoiceNumber reads all stored numbers and computes the next one. It
// never fails: an unreadable store yields the fallback number.
func (s *invoiceService) NextInvoiceNumber(ctx context.Context) string {
	return s.nextNumber(ctx)
}

func (s *invoiceService) nextNumber(ctx context.Context) string {
	numbers, err := s.invoiceRepo.ListNumbers(ctx)
	if err != nil {
		s.log.Warn("failed to list invoice numbers, using fallback", zap.Error(err))
		return numbering.Fallback
	}
	return numbering.Next(numbers)
}

// NewDraft returns the form a new invoice starts from: the next number,
// today's date, one empty line item, the default company profile and,
// when customerID is set, that saved customer. Without a default profile
// the company is left blank.
func (s *invoiceService) NewDraft(ctx context.Context, customerID string) (InvoiceRequest, error) {
	item := ledger.New().Insert()
	draft := InvoiceRequest{
		InvoiceNumber: s.nextNumber(ctx),
		Status:        model.StatusDraft,
		IssueDate:     datefmt.Today(s.now()),
		Currency:      model.DefaultCurrency,
		LineItems:     []LineItemPayload{{ID: item.ID, Description: item.Description, Quantity: item.Quantity, Rate: item.Rate}},
		Fees:          refdata.DefaultFees(),
		InvoiceTitle:  model.DefaultInvoiceTitle,
		FooterMessage: model.DefaultFooterMessage,
		Template:      model.DefaultTemplate,
	}
	if s.parties == nil {
		return draft, nil
	}

	company, err := s.parties.DefaultCompanySnapshot(ctx)
	switch {
	case err == nil:
		draft.Company = company
	case !apperr.IsNotFound(err):
		return InvoiceRequest{}, err
	}

	if customerID != "" {
		customer, err := s.parties.CustomerSnapshot(ctx, customerID)
		if err != nil {
			return InvoiceRequest{}, err
		}
		draft.Customer = customer
	}
	return draft, nil
}

// --- Line items on a saved invoice ---

func (s *invoiceService) InsertLineItem(ctx context.Context, id string) (InvoiceResponse, error) {
	return s.editItems(ctx, id, func(l *ledger.Ledger) (bool, error) {
		l.Insert()
		return true, nil
	})
}

func (s *invoiceService) UpdateLineItem(ctx context.Context, id, itemID string, req LineItemUpdateRequest) (InvoiceResponse, error) {
	if n, ok := req.Value.(float64); ok && req.Field != ledger.FieldDescription {
		if err := checkAmount(req.Field, n); err != nil {
			return InvoiceResponse{}, err
		}
	}
	return s.editItems(ctx, id, func(l *ledger.Ledger) (bool, error) {
		found, err := l.Update(itemID, req.Field, req.Value)
		if err != nil {
			return false, apperr.Validation(err.Error())
		}
		return found, nil
	})
}

func (s *invoiceService) RemoveLineItem(ctx context.Context, id, itemID string) (InvoiceResponse, error) {
	return s.editItems(ctx, id, func(l *ledger.Ledger) (bool, error) {
		return l.Remove(itemID), nil
	})
}

func (s *invoiceService) MoveLineItem(ctx context.Context, id, itemID string, index int) (InvoiceResponse, error) {
	return s.editItems(ctx, id, func(l *ledger.Ledger) (bool, error) {
		return l.Reorder(itemID, index), nil
	})
}

// editItems runs one ledger operation against the stored items, recomputes
// totals with the stored fees and saves atomically. An operation on an
// unknown item changes nothing and writes nothing.
func (s *invoiceService) editItems(ctx context.Context, id string, op func(*ledger.Ledger) (bool, error)) (InvoiceResponse, error) {
	return s.mutate(ctx, id, func(inv *model.Invoice) (string, any, error) {
		l := ledger.FromItems(inv.LineItems)
		changed, err := op(l)
		if err != nil || !changed {
			return "", nil, err
		}
		inv.LineItems = l.Items()
		totals.Compute(inv.LineItems, inv.Fees).Apply(inv)
		return model.ActionEditLineItems, map[string]int{"items": len(inv.LineItems)}, nil
	})
}

// mutate loads, changes and saves one invoice in a transaction. fn returns
// the audit action; an empty action means nothing changed.
func (s *invoiceService) mutate(ctx context.Context, id string, fn func(*model.Invoice) (string, any, error)) (InvoiceResponse, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return InvoiceResponse{}, err
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return apperr.FromRepo(findErr, "invoice")
		}

		action, details, err := fn(invoice)
		if err != nil || action == "" {
			return err
		}
		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return apperr.FromRepo(err, "invoice")
		}
		return s.audit.record(txCtx, action, invoice.ID.String(), invoice.InvoiceNumber, details)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(*invoice), nil
}

// --- Calculator and reporting ---

func (s *invoiceService) PreviewTotals(_ context.Context, req PreviewRequest) (PreviewResponse, error) {
	if err := validateItems(req.LineItems); err != nil {
		return PreviewResponse{}, err
	}
	if err := validateFees(req.Fees); err != nil {
		return PreviewResponse{}, err
	}

	items := ledger.FromItems(toLineItems(req.LineItems)).Items()
	t := totals.Compute(items, req.Fees)
	return PreviewResponse{LineItems: items, Totals: t, Formatted: formatTotals(t)}, nil
}

func (s *invoiceService) Summary(ctx context.Context) (SummaryResponse, error) {
	rows, err := s.invoiceRepo.TotalsByStatus(ctx)
	if err != nil {
		return SummaryResponse{}, apperr.FromRepo(err, "invoice summary")
	}

	var res SummaryResponse
	for _, r := range rows {
		res.Invoices += r.Count
		var b *SummaryBucket
		switch r.Status {
		case model.StatusDraft, model.StatusOpen:
			b = &res.Outstanding
		case model.StatusOverdue:
			b = &res.Overdue
		case model.StatusPaid:
			b = &res.Paid
		default:
			continue
		}
		b.Count += r.Count
		b.Total += r.Total
	}
	for _, b := range []*SummaryBucket{&res.Outstanding, &res.Overdue, &res.Paid} {
		b.Formatted = totals.Format(b.Total)
	}
	return res, nil
}

func (s *invoiceService) RenderPDF(ctx context.Context, id string) ([]byte, *model.Invoice, error) {
	invoiceID, err := parseID(id, "invoice")
	if err != nil {
		return nil, nil, err
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, apperr.FromRepo(err, "invoice")
	}

	pdf, err := s.renderer.Render(invoice)
	if err != nil {
		s.log.Error("failed to render invoice", zap.String("id", id), zap.Error(err))
		return nil, nil, apperr.WithError(err).WithHint("failed to generate PDF").Mark(apperr.ErrSystem)
	}
	return pdf, invoice, nil
}

// --- Helpers ---

// applyRequest copies the request onto inv with defaults, rebuilds the
// ledger and stores freshly computed totals
func (s *invoiceService) applyRequest(inv *model.Invoice, req InvoiceRequest) {
	// a blank status keeps the stored one; new invoices start as drafts
	inv.Status = orDefault(req.Status, orDefault(inv.Status, model.StatusDraft))
	inv.IssueDate = orDefault(req.IssueDate, datefmt.Today(s.now()))
	inv.DueDate = req.DueDate
	inv.Currency = strings.ToUpper(orDefault(req.Currency, model.DefaultCurrency))
	inv.Customer = req.Customer
	inv.Company = req.Company
	inv.Fees = req.Fees
	inv.Notes = req.Notes
	inv.InvoiceTitle = orDefault(req.InvoiceTitle, model.DefaultInvoiceTitle)
	inv.FooterMessage = orDefault(req.FooterMessage, model.DefaultFooterMessage)
	inv.Template = orDefault(req.Template, model.DefaultTemplate)

	inv.LineItems = ledger.FromItems(toLineItems(req.LineItems)).Items()
	totals.Compute(inv.LineItems, inv.Fees).Apply(inv)
}

// saveParties stores the invoice parties as reusable profiles. Failures are
// logged and never fail the invoice write.
func (s *invoiceService) saveParties(ctx context.Context, req InvoiceRequest) {
	if s.parties == nil {
		return
	}
	if req.SaveCustomer {
		if _, err := s.parties.UpsertCustomerByName(ctx, req.Customer); err != nil {
			s.log.Warn("failed to save customer profile", zap.String("name", req.Customer.Name), zap.Error(err))
		}
	}
	if req.SaveCompany {
		if _, err := s.parties.UpsertCompanyByName(ctx, req.Company); err != nil {
			s.log.Warn("failed to save company profile", zap.String("name", req.Company.Name), zap.Error(err))
		}
	}
}

func validateInvoiceRequest(req InvoiceRequest) error {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return apperr.Validation("customer name is required")
	}
	if strings.TrimSpace(req.Company.Name) == "" {
		return apperr.Validation("company name is required")
	}
	if req.UseCustomNumber && strings.TrimSpace(req.InvoiceNumber) == "" {
		return apperr.Validation("invoice number is required when using a custom number")
	}
	if req.Status != "" && !model.IsValidStatus(req.Status) {
		return apperr.Validationf("unknown status %q", req.Status)
	}
	if req.IssueDate != "" {
		if err := datefmt.Validate("issue_date", req.IssueDate); err != nil {
			return apperr.Validation(err.Error())
		}
	}
	if req.DueDate != "" {
		if err := datefmt.Validate("due_date", req.DueDate); err != nil {
			return apperr.Validation(err.Error())
		}
	}
	if req.Currency != "" && len(req.Currency) != 3 {
		return apperr.Validationf("currency must be a 3-letter code, got %q", req.Currency)
	}
	if err := validateItems(req.LineItems); err != nil {
		return err
	}
	return validateFees(req.Fees)
}

func validateItems(items []LineItemPayload) error {
	for i, it := range items {
		if err := checkAmount(fmt.Sprintf("line item %d quantity", i+1), it.Quantity); err != nil {
			return err
		}
		if err := checkAmount(fmt.Sprintf("line item %d rate", i+1), it.Rate); err != nil {
			return err
		}
	}
	return nil
}

func validateFees(f model.FeeConfiguration) error {
	if err := checkAmount("tax rate", f.TaxRatePercent); err != nil {
		return err
	}
	if err := checkAmount("convenience fee", f.ConvenienceFeeAmount); err != nil {
		return err
	}
	return checkAmount("surcharge percent", f.SurchargePercent)
}

func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperr.Validationf("%s must be a finite number", name)
	}
	if v < 0 {
		return apperr.Validationf("%s must not be negative", name)
	}
	return nil
}

func toLineItems(in []LineItemPayload) []model.LineItem {
	out := make([]model.LineItem, 0, len(in))
	for _, p := range in {
		out = append(out, model.LineItem{
			ID:          p.ID,
			Description: p.Description,
			Quantity:    p.Quantity,
			Rate:        p.Rate,
		})
	}
	return out
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func formatTotals(t totals.Totals) FormattedTotals {
	return FormattedTotals{
		Subtotal:       totals.Format(t.Subtotal),
		Surcharge:      totals.Format(t.Surcharge),
		ConvenienceFee: totals.Format(t.ConvenienceFee),
		Tax:            totals.Format(t.Tax),
		Total:          totals.Format(t.Total),
	}
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	t := totals.FromInvoice(inv)
	items := inv.LineItems
	if items == nil {
		items = []model.LineItem{}
	}
	return InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Currency:      inv.Currency,
		Customer:      inv.Customer,
		Company:       inv.Company,
		LineItems:     items,
		Fees:          inv.Fees,
		Totals:        t,
		Formatted:     formatTotals(t),
		Notes:         inv.Notes,
		InvoiceTitle:  inv.InvoiceTitle,
		FooterMessage: inv.FooterMessage,
		Template:      inv.Template,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
}
