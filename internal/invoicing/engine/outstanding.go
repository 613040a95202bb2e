package engine

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// FilterOutstandingInvoices selects the outstanding-invoice rows still owed
// as of the cutoff date.
//
// Discard decisions apply per invoice number, not per row: a row marks its
// whole group discarded when nothing ties to it (no payment referencing the
// invoice number, no write-off referencing the invoice row) and the row
// itself looks settled (flagged paid in full, carries a fully-paid date, or
// has a zero balance). Candidates must be created on or before the cutoff
// with a strictly positive balance. Duplicate rows per invoice number
// collapse to the newest, and the discard set wins even over a surviving
// duplicate, so a discard decision made anywhere in the group holds.
func (e *Engine) FilterOutstandingInvoices(
	records []domain.OutstandingInvoiceRecord,
	payments []domain.PaymentRecord,
	writeOffs []domain.WriteOffRecord,
	cutoff time.Time,
) (domain.OutstandingInvoiceAggregate, error) {
	paidInvoiceNumbers := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.InvoiceNumber != nil && *p.InvoiceNumber != "" {
			paidInvoiceNumbers[*p.InvoiceNumber] = true
		}
	}

	writtenOffInvoiceIDs := make(map[snowflake.ID]bool, len(writeOffs))
	for _, w := range writeOffs {
		if w.IsInvoiceTagged() {
			writtenOffInvoiceIDs[*w.CustomerInvoiceID] = true
		}
	}

	discarded := make(map[string]bool)
	for _, r := range records {
		if paidInvoiceNumbers[r.InvoiceNumber] || writtenOffInvoiceIDs[r.CustomerInvoiceID] {
			continue
		}
		if r.PaidInFull || r.FullyPaidDate != nil || r.RemainingBalance == 0 {
			discarded[r.InvoiceNumber] = true
		}
	}

	// Collapse candidates to the newest row per invoice number, keeping
	// first-encounter order of the groups.
	latest := make(map[string]domain.OutstandingInvoiceRecord)
	order := make([]string, 0, len(records))
	for _, r := range records {
		if r.CreatedAt.After(cutoff) {
			continue
		}
		if r.RemainingBalance <= 0 {
			continue
		}
		if discarded[r.InvoiceNumber] {
			continue
		}
		existing, seen := latest[r.InvoiceNumber]
		if !seen {
			order = append(order, r.InvoiceNumber)
			latest[r.InvoiceNumber] = r
			continue
		}
		if r.CreatedAt.After(existing.CreatedAt) {
			latest[r.InvoiceNumber] = r
		}
	}

	agg := domain.OutstandingInvoiceAggregate{
		Records: make([]domain.OutstandingInvoiceRecord, 0, len(order)),
	}
	for _, number := range order {
		if discarded[number] {
			continue
		}
		r := latest[number]
		agg.Records = append(agg.Records, r)
		agg.Total += r.RemainingBalance
	}

	if err := validateTotal("outstandingInvoiceTotal", agg.Total); err != nil {
		return domain.OutstandingInvoiceAggregate{}, err
	}
	return agg, nil
}
