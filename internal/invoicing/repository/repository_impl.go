// Package repository loads the per-run query-data snapshot for the invoice
// engine.
package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Repository {
	return &Repository{
		db:  p.DB,
		log: p.Log.Named("invoicing.repository"),
	}
}

// LoadQueryData reads every record type for the requested customers into
// one snapshot. Rows are ordered by creation time then id so repeated runs
// over the same data produce identical orderings. An empty id list loads
// all active billable customers.
func (r *Repository) LoadQueryData(ctx context.Context, customerIDs []snowflake.ID) (domain.QueryData, error) {
	customers, err := r.loadCustomers(ctx, customerIDs)
	if err != nil {
		return domain.QueryData{}, err
	}
	if len(customers) == 0 {
		return domain.QueryData{}, domain.ErrCustomerNotFound
	}

	ids := make([]snowflake.ID, 0, len(customers))
	data := domain.QueryData{
		OutstandingInvoices: make(map[snowflake.ID][]domain.OutstandingInvoiceRecord, len(customers)),
		Payments:            make(map[snowflake.ID][]domain.PaymentRecord, len(customers)),
		Retainers:           make(map[snowflake.ID][]domain.RetainerRecord, len(customers)),
		WriteOffs:           make(map[snowflake.ID][]domain.WriteOffRecord, len(customers)),
		Transactions:        make(map[snowflake.ID][]domain.TransactionRecord, len(customers)),
		LastInvoiceDates:    make(map[snowflake.ID]time.Time, len(customers)),
	}
	now := time.Now().UTC()
	for _, c := range customers {
		ids = append(ids, c.ID)
		if c.LastInvoiceDate != nil {
			data.LastInvoiceDates[c.ID] = *c.LastInvoiceDate
		} else {
			// Never invoiced: everything to date is in scope.
			data.LastInvoiceDates[c.ID] = now
		}
	}

	var invoices []domain.OutstandingInvoiceRecord
	if err := r.scoped(ctx, ids).Find(&invoices).Error; err != nil {
		return domain.QueryData{}, err
	}
	for _, row := range invoices {
		data.OutstandingInvoices[row.CustomerID] = append(data.OutstandingInvoices[row.CustomerID], row)
	}

	var payments []domain.PaymentRecord
	if err := r.scoped(ctx, ids).Find(&payments).Error; err != nil {
		return domain.QueryData{}, err
	}
	for _, row := range payments {
		data.Payments[row.CustomerID] = append(data.Payments[row.CustomerID], row)
	}

	var retainers []domain.RetainerRecord
	if err := r.scoped(ctx, ids).Find(&retainers).Error; err != nil {
		return domain.QueryData{}, err
	}
	for _, row := range retainers {
		data.Retainers[row.CustomerID] = append(data.Retainers[row.CustomerID], row)
	}

	var writeOffs []domain.WriteOffRecord
	if err := r.scoped(ctx, ids).Find(&writeOffs).Error; err != nil {
		return domain.QueryData{}, err
	}
	for _, row := range writeOffs {
		data.WriteOffs[row.CustomerID] = append(data.WriteOffs[row.CustomerID], row)
	}

	var transactions []domain.TransactionRecord
	if err := r.scoped(ctx, ids).Find(&transactions).Error; err != nil {
		return domain.QueryData{}, err
	}
	for _, row := range transactions {
		data.Transactions[row.CustomerID] = append(data.Transactions[row.CustomerID], row)
	}

	return data, nil
}

func (r *Repository) scoped(ctx context.Context, ids []snowflake.ID) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("customer_id IN ?", ids).
		Order("created_at ASC, id ASC")
}

func (r *Repository) loadCustomers(ctx context.Context, customerIDs []snowflake.ID) ([]customerdomain.Customer, error) {
	stmt := r.db.WithContext(ctx).Order("id ASC")
	if len(customerIDs) > 0 {
		stmt = stmt.Where("id IN ?", customerIDs)
	} else {
		stmt = stmt.Where("is_active = ? AND is_billable = ?", true, true)
	}

	var customers []customerdomain.Customer
	if err := stmt.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Customers exposes the customer rows for document assembly.
func (r *Repository) Customers(ctx context.Context, customerIDs []snowflake.ID) (map[snowflake.ID]customerdomain.Customer, error) {
	customers, err := r.loadCustomers(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]customerdomain.Customer, len(customers))
	for _, c := range customers {
		out[c.ID] = c
	}
	return out, nil
}

// NextSequence allocates the next invoice sequence for a customer.
func (r *Repository) NextSequence(ctx context.Context, customerID snowflake.ID) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(sequence), 0) + 1
		 FROM issued_invoices
		 WHERE customer_id = ?`,
		customerID,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// RecordIssued persists one rendered invoice record.
func (r *Repository) RecordIssued(ctx context.Context, issued domain.IssuedInvoice) error {
	return r.db.WithContext(ctx).Create(&issued).Error
}

// MarkInvoiced advances the customer's last-invoice cutoff so the next run
// starts after this one.
func (r *Repository) MarkInvoiced(ctx context.Context, customerID snowflake.ID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"last_invoice_date": at,
			"updated_at":        time.Now().UTC(),
		}).Error
}
