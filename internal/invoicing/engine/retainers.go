package engine

import (
	"math"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// AggregateRetainers collapses retainer lineages to the single most recent
// snapshot per lineage and sums their current balances. Renewals supersede
// older snapshots of the same lineage; only the latest balance is
// authoritative. With hideRetainers set the aggregate is suppressed
// entirely: zero total, no records.
func (e *Engine) AggregateRetainers(records []domain.RetainerRecord, hideRetainers bool) (domain.RetainerAggregate, error) {
	if hideRetainers {
		return domain.RetainerAggregate{Records: []domain.RetainerRecord{}}, nil
	}

	latest := make(map[snowflake.ID]domain.RetainerRecord)
	order := make([]snowflake.ID, 0, len(records))
	for _, r := range records {
		lineage := r.LineageID()
		existing, seen := latest[lineage]
		if !seen {
			order = append(order, lineage)
			latest[lineage] = r
			continue
		}
		if r.CreatedAt.After(existing.CreatedAt) {
			latest[lineage] = r
		}
	}

	agg := domain.RetainerAggregate{
		Records: make([]domain.RetainerRecord, 0, len(order)),
	}
	for _, lineage := range order {
		r := latest[lineage]
		agg.Records = append(agg.Records, r)
		agg.Total += r.CurrentAmount
	}

	if err := validateTotal("retainerTotal", agg.Total); err != nil {
		return domain.RetainerAggregate{}, err
	}
	return agg, nil
}

// AggregateRetainerConsumption groups retainer-funded transactions by the
// lineage they draw on and totals the drawdown. The lineage lookup maps
// every retainer id to its parent (or itself) without latest-wins
// collapsing; a retainer id maps one-to-one to its own parent. Consumption
// is always reported as an outflow: the aggregate total is the sum of
// negative absolute lineage totals regardless of transaction signs.
func (e *Engine) AggregateRetainerConsumption(
	transactions []domain.TransactionRecord,
	retainers []domain.RetainerRecord,
) (domain.RetainerConsumptionAggregate, error) {
	lineageOf := make(map[snowflake.ID]snowflake.ID, len(retainers))
	for _, r := range retainers {
		lineageOf[r.ID] = r.LineageID()
	}

	grouped := make(map[snowflake.ID]*domain.RetainerConsumption)
	order := make([]snowflake.ID, 0)
	for _, t := range transactions {
		if t.RetainerID == nil || *t.RetainerID == 0 {
			continue
		}
		lineage, ok := lineageOf[*t.RetainerID]
		if !ok {
			lineage = *t.RetainerID
		}
		group, seen := grouped[lineage]
		if !seen {
			group = &domain.RetainerConsumption{RetainerID: lineage}
			grouped[lineage] = group
			order = append(order, lineage)
		}
		group.Records = append(group.Records, t)
		group.Total += t.Total
	}

	agg := domain.RetainerConsumptionAggregate{
		Lineages: make([]domain.RetainerConsumption, 0, len(order)),
	}
	for _, lineage := range order {
		group := grouped[lineage]
		agg.Lineages = append(agg.Lineages, *group)
		agg.Total += -math.Abs(group.Total)
	}

	if err := validateTotal("transactionRetainerPaymentTotal", agg.Total); err != nil {
		return domain.RetainerConsumptionAggregate{}, err
	}
	return agg, nil
}
