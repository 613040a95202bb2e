// Package engine implements the invoice calculation pipeline: six
// independent aggregators over a customer's financial records plus the
// totalizer that combines them into the balance due.
package engine

import (
	"errors"
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Aggregation stage names used in ComputationError context.
const (
	StageOutstandingInvoices = "outstanding_invoices"
	StagePayments            = "payments"
	StageRetainers           = "retainers"
	StageWriteOffs           = "write_offs"
	StageTransactions        = "transactions"
	StageRetainerConsumption = "retainer_consumption"
	StageTotals              = "totals"
)

type Params struct {
	fx.In

	Log *zap.Logger
}

// Engine is stateless; every method is a pure read over the caller's
// snapshot, safe to run concurrently across customers.
type Engine struct {
	log *zap.Logger
}

func New(p Params) *Engine {
	return &Engine{log: p.Log.Named("invoicing.engine")}
}

// validateTotal enforces the numeric invariant: every aggregator total must
// be a finite number, never NaN or Inf silently carried forward.
func validateTotal(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &domain.ValidationError{Total: name, Value: value}
	}
	return nil
}

func computationError(customerID snowflake.ID, stage string, err error) error {
	return &domain.ComputationError{CustomerID: customerID, Stage: stage, Err: err}
}

// Compute runs the six aggregators for one customer over the snapshot and
// combines their outputs. The six are mutually independent reads; the
// totalizer depends on all of them.
func (e *Engine) Compute(data domain.QueryData, customerID snowflake.ID, opts domain.ComputeOptions) (domain.InvoiceComputation, error) {
	invoices := data.OutstandingInvoices[customerID]
	payments := data.Payments[customerID]
	retainers := data.Retainers[customerID]
	writeOffs := data.WriteOffs[customerID]
	transactions := data.Transactions[customerID]
	cutoff := data.LastInvoiceDates[customerID]

	outstanding, err := e.FilterOutstandingInvoices(invoices, payments, writeOffs, cutoff)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageOutstandingInvoices, err)
	}

	paymentAgg, err := e.AggregatePayments(payments)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StagePayments, err)
	}

	retainerAgg, err := e.AggregateRetainers(retainers, opts.HideRetainers)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageRetainers, err)
	}

	writeOffAgg, err := e.AggregateWriteOffs(writeOffs, transactions, opts.ShowWriteOffs)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageWriteOffs, err)
	}

	transactionAgg, err := e.AggregateTransactions(transactions, writeOffs, writeOffAgg.Show)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageTransactions, err)
	}

	consumptionAgg, err := e.AggregateRetainerConsumption(transactions, retainers)
	if err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageRetainerConsumption, err)
	}

	computation := domain.InvoiceComputation{
		CustomerID:          customerID,
		OutstandingInvoices: outstanding,
		Payments:            paymentAgg,
		Retainers:           retainerAgg,
		WriteOffs:           writeOffAgg,
		Transactions:        transactionAgg,
		RetainerConsumption: consumptionAgg,
	}
	if err := e.totalize(&computation, opts.HideRetainers); err != nil {
		return domain.InvoiceComputation{}, computationError(customerID, StageTotals, err)
	}

	return computation, nil
}

// ComputeAll computes every requested customer in order. A failed customer
// is absent from the results and reported through the joined error; the
// remaining customers still compute.
func (e *Engine) ComputeAll(data domain.QueryData, customerIDs []snowflake.ID, opts domain.ComputeOptions) ([]domain.InvoiceComputation, error) {
	computations := make([]domain.InvoiceComputation, 0, len(customerIDs))

	var runErr error
	for _, customerID := range customerIDs {
		computation, err := e.Compute(data, customerID, opts)
		if err != nil {
			runErr = errors.Join(runErr, err)
			e.log.Warn("invoice computation failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
			continue
		}
		computations = append(computations, computation)
	}

	return computations, runErr
}

// totalize combines the aggregate totals. Write-offs always fold into the
// final balance; display mode only decides which records are itemized.
func (e *Engine) totalize(c *domain.InvoiceComputation, hideRetainers bool) error {
	invoiceTotalHidingWriteOffs := c.Payments.Total + c.Transactions.Total + c.OutstandingInvoices.Total
	c.PreRetainerInvoiceTotal = invoiceTotalHidingWriteOffs + c.WriteOffs.Total
	c.InvoiceTotal = c.PreRetainerInvoiceTotal

	c.RetainerAppliedToInvoice = c.Payments.RetainerPaymentTotal

	retainerTotal := c.Retainers.Total
	if hideRetainers {
		retainerTotal = 0
	}
	c.RemainingRetainer = retainerTotal + math.Abs(c.RetainerAppliedToInvoice)

	return validateTotal("invoiceTotal", c.InvoiceTotal)
}
