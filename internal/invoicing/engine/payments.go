package engine

import (
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// AggregatePayments sums all payments for the customer and splits out the
// retainer/prepayment-funded subset. The record list is exposed under both
// the display and audit views.
func (e *Engine) AggregatePayments(records []domain.PaymentRecord) (domain.PaymentAggregate, error) {
	agg := domain.PaymentAggregate{
		Records:    records,
		AllRecords: records,
	}
	for _, p := range records {
		agg.Total += p.Amount
		if p.FormOfPayment.IsRetainerFunded() {
			agg.RetainerPaymentTotal += p.Amount
		}
	}

	if err := validateTotal("paymentTotal", agg.Total); err != nil {
		return domain.PaymentAggregate{}, err
	}
	return agg, nil
}
