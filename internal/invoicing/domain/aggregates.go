package domain

import "github.com/bwmarrin/snowflake"

// OutstandingInvoiceAggregate is the record filter output: the rows still
// owed after discard-group filtering and revision collapsing.
type OutstandingInvoiceAggregate struct {
	Total   float64                    `json:"outstandingInvoiceTotal"`
	Records []OutstandingInvoiceRecord `json:"outstandingInvoiceRecords"`
}

// PaymentAggregate sums customer payments. Records and AllRecords hold the
// same rows under two names: rendering itemizes Records while audit reads
// AllRecords. Both views are kept on purpose.
type PaymentAggregate struct {
	Total                float64         `json:"paymentTotal"`
	RetainerPaymentTotal float64         `json:"retainerPaymentTotal"`
	Records              []PaymentRecord `json:"paymentRecords"`
	AllRecords           []PaymentRecord `json:"allPaymentRecords"`
}

// RetainerAggregate holds one record per retainer lineage, the most recently
// created snapshot of each.
type RetainerAggregate struct {
	Total   float64          `json:"retainerTotal"`
	Records []RetainerRecord `json:"retainerRecords"`
}

// WriteOffAggregate partitions write-offs by display mode. In show mode
// Records carries every write-off; in hide mode it carries only the
// invoice-tagged subset while JobRecords keeps the job-tagged rows that the
// transaction aggregator nets into job totals.
type WriteOffAggregate struct {
	Total      float64          `json:"writeOffTotal"`
	Show       bool             `json:"showWriteOffs"`
	Records    []WriteOffRecord `json:"writeOffRecords"`
	JobRecords []WriteOffRecord `json:"jobWriteOffRecords"`
}

// JobAggregate is the per-job rollup of billable transaction totals plus any
// job-tagged write-offs netted in.
type JobAggregate struct {
	JobID          snowflake.ID        `json:"jobID"`
	JobDescription string              `json:"jobDescription"`
	Total          float64             `json:"jobTotal"`
	WriteOffTotal  float64             `json:"jobWriteOffTotal"`
	WriteOffs      []WriteOffRecord    `json:"jobWriteOffRecords"`
	Transactions   []TransactionRecord `json:"transactionRecords"`
}

// TransactionAggregate groups billable transactions by job. Jobs keep
// first-encounter order. AllRecords is the unfiltered transaction list for
// audit, present even when no jobs exist.
type TransactionAggregate struct {
	Total      float64             `json:"transactionsTotal"`
	Jobs       []JobAggregate      `json:"jobRecords"`
	AllRecords []TransactionRecord `json:"allTransactionRecords"`
}

// RetainerConsumption is the drawdown charged against one retainer lineage.
// Total carries the sign of the underlying transactions; the aggregate-level
// figure converts it to an outflow.
type RetainerConsumption struct {
	RetainerID snowflake.ID        `json:"retainer_id"`
	Total      float64             `json:"retainerTotal"`
	Records    []TransactionRecord `json:"records"`
}

// RetainerConsumptionAggregate totals retainer-funded transactions per
// lineage. Total is always the sum of negative absolute lineage totals.
type RetainerConsumptionAggregate struct {
	Total    float64               `json:"transactionRetainerPaymentTotal"`
	Lineages []RetainerConsumption `json:"retainerTransactionRecords"`
}

// InvoiceComputation is the complete computed invoice for one customer:
// the six aggregates plus the combined totals.
type InvoiceComputation struct {
	CustomerID snowflake.ID `json:"customer_id"`

	OutstandingInvoices OutstandingInvoiceAggregate  `json:"outstandingInvoices"`
	Payments            PaymentAggregate             `json:"payments"`
	Retainers           RetainerAggregate            `json:"retainers"`
	WriteOffs           WriteOffAggregate            `json:"writeOffs"`
	Transactions        TransactionAggregate         `json:"transactions"`
	RetainerConsumption RetainerConsumptionAggregate `json:"retainerConsumption"`

	RetainerAppliedToInvoice float64 `json:"retainerAppliedToInvoice"`
	RemainingRetainer        float64 `json:"remainingRetainer"`
	InvoiceTotal             float64 `json:"invoiceTotal"`
	PreRetainerInvoiceTotal  float64 `json:"preRetainerInvoiceTotal"`
}
