package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// IssuedInvoice records one rendered invoice: the number it was issued
// under, the computed balance and the archive handle of the PDF. Sequence
// numbering reads MAX(sequence)+1 over this table per customer, so the
// number is unique per customer, not globally; two customers may both hold
// a 0001.
type IssuedInvoice struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;uniqueIndex:idx_issued_customer_number" json:"customer_id"`
	InvoiceNumber string       `gorm:"type:text;not null;uniqueIndex:idx_issued_customer_number" json:"invoice_number"`
	Sequence      int64        `gorm:"not null" json:"sequence"`
	Revision      int64        `gorm:"not null;default:1" json:"revision"`
	InvoiceTotal  float64      `gorm:"not null;default:0" json:"invoice_total"`
	StorageKey    string       `gorm:"type:text" json:"storage_key,omitempty"`
	IssuedAt      time.Time    `gorm:"not null" json:"issued_at"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (IssuedInvoice) TableName() string { return "issued_invoices" }
