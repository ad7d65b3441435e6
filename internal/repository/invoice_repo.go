package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows List; an empty Status returns every invoice
type InvoiceListFilter struct {
	Status string
	Page   int
	Limit  int
}

// StatusTotal is one row of the per-status aggregate
type StatusTotal struct {
	Status string
	Count  int64
	Total  float64
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	ListNumbers(ctx context.Context) ([]string, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
	BackfillDefaults(ctx context.Context, title, footer string) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	byStatus := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			return q.Where("status = ?", filter.Status)
		}
		return q
	}

	if err := db.Model(&model.Invoice{}).Scopes(byStatus).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Scopes(byStatus).Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

// ListNumbers returns every stored invoice number, custom ones included
func (r *invoiceRepository) ListNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Pluck("invoice_number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

func (r *invoiceRepository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(total), 0) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BackfillDefaults fills blank titles and footers on rows written before
// those columns existed
func (r *invoiceRepository) BackfillDefaults(ctx context.Context, title, footer string) (int64, error) {
	db := GetDB(ctx, r.db)

	titles := db.Model(&model.Invoice{}).
		Where("invoice_title IS NULL OR invoice_title = ''").
		Update("invoice_title", title)
	if titles.Error != nil {
		return 0, titles.Error
	}

	footers := db.Model(&model.Invoice{}).
		Where("footer_message IS NULL OR footer_message = ''").
		Update("footer_message", footer)
	if footers.Error != nil {
		return 0, footers.Error
	}

	return titles.RowsAffected + footers.RowsAffected, nil
}
