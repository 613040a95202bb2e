// Package domain contains the financial record models and computed
// aggregates for invoice calculation.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentForm classifies how a payment was made.
type PaymentForm string

const (
	PaymentFormRetainer   PaymentForm = "Retainer"
	PaymentFormPrepayment PaymentForm = "Prepayment"
	PaymentFormCheck      PaymentForm = "Check"
	PaymentFormACH        PaymentForm = "ACH"
	PaymentFormCreditCard PaymentForm = "Credit Card"
)

// IsRetainerFunded reports whether the payment draws on a retainer or
// prepayment balance rather than new money.
func (f PaymentForm) IsRetainerFunded() bool {
	return f == PaymentFormRetainer || f == PaymentFormPrepayment
}

// OutstandingInvoiceRecord is one raw outstanding-invoice row. A logical
// invoice may appear as several rows (parent plus revisions) sharing an
// invoice number; the engine collapses them to one winning row.
type OutstandingInvoiceRecord struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID        snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	CustomerInvoiceID snowflake.ID  `gorm:"not null;index" json:"customer_invoice_id"`
	ParentInvoiceID   *snowflake.ID `gorm:"index" json:"parent_invoice_id,omitempty"`
	InvoiceNumber     string        `gorm:"type:text;not null;index" json:"invoice_number"`
	RemainingBalance  float64       `gorm:"not null;default:0" json:"remaining_balance_on_invoice"`
	PaidInFull        bool          `gorm:"not null;default:false" json:"is_invoice_paid_in_full"`
	FullyPaidDate     *time.Time    `gorm:"" json:"fully_paid_date,omitempty"`
	DueDate           *time.Time    `gorm:"" json:"due_date,omitempty"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (OutstandingInvoiceRecord) TableName() string { return "outstanding_invoices" }

// PaymentRecord is a customer payment, optionally tied to an invoice number.
type PaymentRecord struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;index" json:"customer_id"`
	InvoiceNumber *string      `gorm:"type:text;index" json:"invoice_number,omitempty"`
	Amount        float64      `gorm:"column:payment_amount;not null;default:0" json:"payment_amount"`
	FormOfPayment PaymentForm  `gorm:"type:text;not null" json:"form_of_payment"`
	RefNumber     string       `gorm:"type:text" json:"payment_reference_number,omitempty"`
	PaymentDate   time.Time    `gorm:"not null" json:"payment_date"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentRecord) TableName() string { return "payments" }

// RetainerRecord is a snapshot of a retainer or prepayment balance. Records
// linked through ParentRetainerID form a lineage: one logical retainer
// renewed over time. A root record has a nil parent.
type RetainerRecord struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"retainer_id"`
	CustomerID       snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	ParentRetainerID *snowflake.ID `gorm:"index" json:"parent_retainer_id,omitempty"`
	TypeOfHold       string        `gorm:"type:text" json:"type_of_hold,omitempty"`
	StartingAmount   float64       `gorm:"not null;default:0" json:"starting_amount"`
	CurrentAmount    float64       `gorm:"not null;default:0" json:"current_amount"`
	IsRetainerClosed bool          `gorm:"not null;default:false" json:"is_retainer_closed"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (RetainerRecord) TableName() string { return "retainers" }

// LineageID resolves the retainer's lineage group key: the parent id when
// present, otherwise the record's own id.
func (r RetainerRecord) LineageID() snowflake.ID {
	if r.ParentRetainerID != nil && *r.ParentRetainerID != 0 {
		return *r.ParentRetainerID
	}
	return r.ID
}

// WriteOffRecord forgives part of a balance. It is tagged to either an
// invoice or a job, never both.
type WriteOffRecord struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID        snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	CustomerInvoiceID *snowflake.ID `gorm:"index" json:"customer_invoice_id,omitempty"`
	CustomerJobID     *snowflake.ID `gorm:"index" json:"customer_job_id,omitempty"`
	Amount            float64       `gorm:"column:writeoff_amount;not null;default:0" json:"writeoff_amount"`
	Reason            string        `gorm:"column:writeoff_reason;type:text" json:"writeoff_reason,omitempty"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (WriteOffRecord) TableName() string { return "write_offs" }

// IsInvoiceTagged reports whether the write-off targets an invoice.
func (w WriteOffRecord) IsInvoiceTagged() bool {
	return w.CustomerInvoiceID != nil && *w.CustomerInvoiceID != 0
}

// IsJobTagged reports whether the write-off targets a job.
func (w WriteOffRecord) IsJobTagged() bool {
	return w.CustomerJobID != nil && *w.CustomerJobID != 0
}

// TransactionRecord is a unit of billable (or non-billable) work charged to
// a customer job. A non-nil RetainerID marks the transaction as funded by a
// retainer lineage instead of billed on the invoice.
type TransactionRecord struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID      snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	CustomerJobID   snowflake.ID  `gorm:"not null;index" json:"customer_job_id"`
	RetainerID      *snowflake.ID `gorm:"index" json:"retainer_id,omitempty"`
	Total           float64       `gorm:"column:total_transaction;not null;default:0" json:"total_transaction"`
	Billable        bool          `gorm:"column:is_transaction_billable;not null;default:true" json:"is_transaction_billable"`
	JobDescription  string        `gorm:"type:text" json:"job_description,omitempty"`
	TransactionDate time.Time     `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (TransactionRecord) TableName() string { return "transactions" }

// QueryData is the immutable per-run snapshot the engine reads. Every map is
// keyed by customer id. Customers absent from a map simply have no records
// of that type.
type QueryData struct {
	OutstandingInvoices map[snowflake.ID][]OutstandingInvoiceRecord
	Payments            map[snowflake.ID][]PaymentRecord
	Retainers           map[snowflake.ID][]RetainerRecord
	WriteOffs           map[snowflake.ID][]WriteOffRecord
	Transactions        map[snowflake.ID][]TransactionRecord
	LastInvoiceDates    map[snowflake.ID]time.Time
}
