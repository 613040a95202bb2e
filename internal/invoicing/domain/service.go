package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
)

// ComputeOptions is the immutable per-run display configuration. It is
// passed into every aggregator call; nothing mutates it mid-pipeline.
type ComputeOptions struct {
	// ShowWriteOffs itemizes write-offs separately instead of netting
	// job-tagged ones into job totals. The arithmetic of the final balance
	// is identical either way.
	ShowWriteOffs bool
	// HideRetainers suppresses the retainer aggregate entirely. Reserved
	// for caller control; currently always false in the HTTP surface.
	HideRetainers bool
}

// Repository loads the immutable query-data snapshot the engine computes
// from.
type Repository interface {
	// LoadQueryData fetches every record type for the given customers in
	// one consistent read. An empty customer list loads all customers that
	// have any records.
	LoadQueryData(ctx context.Context, customerIDs []snowflake.ID) (QueryData, error)
	// Customers fetches the account rows for document assembly. An empty
	// id list fetches all active billable customers.
	Customers(ctx context.Context, customerIDs []snowflake.ID) (map[snowflake.ID]customerdomain.Customer, error)
	// NextSequence allocates the customer's next invoice sequence number.
	NextSequence(ctx context.Context, customerID snowflake.ID) (int64, error)
	// RecordIssued persists a rendered invoice record.
	RecordIssued(ctx context.Context, issued IssuedInvoice) error
	// MarkInvoiced advances the customer's last-invoice cutoff.
	MarkInvoiced(ctx context.Context, customerID snowflake.ID, at time.Time) error
}

// RunInvoicesRequest asks the service to compute, render and archive
// invoices for a set of customers as of a cutoff date.
type RunInvoicesRequest struct {
	CustomerIDs   []snowflake.ID `json:"customer_ids"`
	CutoffDate    *time.Time     `json:"cutoff_date,omitempty"`
	ShowWriteOffs bool           `json:"show_write_offs"`
}

// InvoiceFailure reports one customer whose computation failed. The batch
// continues past it; the failure is never silently dropped.
type InvoiceFailure struct {
	CustomerID snowflake.ID `json:"customer_id"`
	Stage      string       `json:"stage,omitempty"`
	Error      string       `json:"error"`
}

// InvoiceResult pairs a completed computation with its rendered artifacts.
type InvoiceResult struct {
	Computation   InvoiceComputation `json:"computation"`
	InvoiceNumber string             `json:"invoice_number"`
	StorageKey    string             `json:"storage_key,omitempty"`
}

// RunInvoicesResponse carries completed results and per-customer failures.
type RunInvoicesResponse struct {
	Results  []InvoiceResult  `json:"results"`
	Failures []InvoiceFailure `json:"failures,omitempty"`
}

// Service orchestrates the invoice run: snapshot load, engine computation,
// document assembly, rendering and archival.
type Service interface {
	RunInvoices(ctx context.Context, req RunInvoicesRequest) (RunInvoicesResponse, error)
	ComputeOnly(ctx context.Context, req RunInvoicesRequest) (RunInvoicesResponse, error)
}
