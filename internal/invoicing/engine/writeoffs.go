package engine

import (
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// effectiveWriteOffMode resolves the display mode for a customer. A
// customer with write-offs but no transactions at all is forced into show
// mode: there is no job list to fold the write-offs into, so hiding them
// would drop them from the invoice entirely.
func effectiveWriteOffMode(showWriteOffs bool, writeOffCount, transactionCount int) bool {
	if !showWriteOffs && transactionCount == 0 && writeOffCount > 0 {
		return true
	}
	return showWriteOffs
}

// AggregateWriteOffs totals the customer's write-offs under the effective
// display mode. Show mode itemizes every record. Hide mode totals only the
// invoice-tagged subset; the job-tagged rows are netted into job totals by
// the transaction aggregator and kept here under JobRecords for audit.
func (e *Engine) AggregateWriteOffs(
	writeOffs []domain.WriteOffRecord,
	transactions []domain.TransactionRecord,
	showWriteOffs bool,
) (domain.WriteOffAggregate, error) {
	show := effectiveWriteOffMode(showWriteOffs, len(writeOffs), len(transactions))

	invoiceTagged := make([]domain.WriteOffRecord, 0, len(writeOffs))
	jobTagged := make([]domain.WriteOffRecord, 0, len(writeOffs))
	for _, w := range writeOffs {
		if w.IsJobTagged() {
			jobTagged = append(jobTagged, w)
		} else {
			invoiceTagged = append(invoiceTagged, w)
		}
	}

	agg := domain.WriteOffAggregate{
		Show:       show,
		JobRecords: jobTagged,
	}
	if show {
		agg.Records = writeOffs
		for _, w := range writeOffs {
			agg.Total += w.Amount
		}
	} else {
		agg.Records = invoiceTagged
		for _, w := range invoiceTagged {
			agg.Total += w.Amount
		}
	}

	if err := validateTotal("writeOffTotal", agg.Total); err != nil {
		return domain.WriteOffAggregate{}, err
	}
	return agg, nil
}
