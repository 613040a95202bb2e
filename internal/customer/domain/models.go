// Package domain contains the customer account model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is a billable account. LastInvoiceDate is the cutoff for the
// next invoice run: records created after it wait for the following period.
type Customer struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name            string            `gorm:"not null" json:"name"`
	Email           string            `gorm:"type:text" json:"email,omitempty"`
	Address         string            `gorm:"type:text" json:"address,omitempty"`
	City            string            `gorm:"type:text" json:"city,omitempty"`
	State           string            `gorm:"type:text" json:"state,omitempty"`
	Zip             string            `gorm:"type:text" json:"zip,omitempty"`
	IsActive        bool              `gorm:"not null;default:true" json:"is_active"`
	IsBillable      bool              `gorm:"not null;default:true" json:"is_billable"`
	LastInvoiceDate *time.Time        `gorm:"" json:"last_invoice_date,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// BillTo renders the mailing block for invoice documents.
func (c Customer) BillTo() string {
	out := c.Address
	if c.City != "" || c.State != "" || c.Zip != "" {
		if out != "" {
			out += "\n"
		}
		out += c.City
		if c.State != "" {
			out += ", " + c.State
		}
		if c.Zip != "" {
			out += " " + c.Zip
		}
	}
	return out
}
