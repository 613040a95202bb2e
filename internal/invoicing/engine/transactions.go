package engine

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// AggregateTransactions groups transactions by job and totals billable work
// per job, netting in job-tagged write-offs when the display mode hides
// them. Jobs keep first-encounter order. Non-billable transactions are
// recorded on the job but never move its total. When no jobs exist the
// aggregate still exposes the unfiltered transaction list for audit.
func (e *Engine) AggregateTransactions(
	transactions []domain.TransactionRecord,
	writeOffs []domain.WriteOffRecord,
	showWriteOffs bool,
) (domain.TransactionAggregate, error) {
	// In show mode write-offs are reported separately, so nothing nets
	// into job totals.
	jobWriteOffs := make(map[snowflake.ID][]domain.WriteOffRecord)
	if len(writeOffs) > 0 && !showWriteOffs {
		for _, w := range writeOffs {
			if w.IsJobTagged() {
				jobWriteOffs[*w.CustomerJobID] = append(jobWriteOffs[*w.CustomerJobID], w)
			}
		}
	}

	jobs := make(map[snowflake.ID]*domain.JobAggregate)
	order := make([]snowflake.ID, 0)
	for _, t := range transactions {
		job, seen := jobs[t.CustomerJobID]
		if !seen {
			job = &domain.JobAggregate{
				JobID:          t.CustomerJobID,
				JobDescription: t.JobDescription,
				WriteOffs:      jobWriteOffs[t.CustomerJobID],
			}
			for _, w := range job.WriteOffs {
				job.WriteOffTotal += w.Amount
			}
			job.Total = job.WriteOffTotal
			jobs[t.CustomerJobID] = job
			order = append(order, t.CustomerJobID)
		}
		if t.Billable {
			job.Total += t.Total
		}
		job.Transactions = append(job.Transactions, t)
	}

	agg := domain.TransactionAggregate{
		Jobs:       make([]domain.JobAggregate, 0, len(order)),
		AllRecords: transactions,
	}
	for _, jobID := range order {
		job := jobs[jobID]
		agg.Jobs = append(agg.Jobs, *job)
		agg.Total += job.Total
	}

	if err := validateTotal("transactionsTotal", agg.Total); err != nil {
		return domain.TransactionAggregate{}, err
	}
	return agg, nil
}
