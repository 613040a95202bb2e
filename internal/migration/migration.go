// Package migration creates the core tables on startup so the service is
// usable out of the box for local and self-hosted environments.
package migration

import (
	archivedomain "github.com/smallbiznis/arledger/internal/archive/domain"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

// Run applies the schema for every persisted model.
func Run(conn *gorm.DB, log *zap.Logger) error {
	err := conn.AutoMigrate(
		&customerdomain.Customer{},
		&invoicingdomain.OutstandingInvoiceRecord{},
		&invoicingdomain.PaymentRecord{},
		&invoicingdomain.RetainerRecord{},
		&invoicingdomain.WriteOffRecord{},
		&invoicingdomain.TransactionRecord{},
		&invoicingdomain.IssuedInvoice{},
		&archivedomain.ArchivedDocument{},
	)
	if err != nil {
		return err
	}

	log.Named("migration").Info("schema up to date")
	return nil
}
