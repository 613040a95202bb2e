package engine

import (
	"math"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceWriteOff(node *snowflake.Node, amount float64) domain.WriteOffRecord {
	invoiceID := node.Generate()
	return domain.WriteOffRecord{
		ID:                node.Generate(),
		CustomerID:        1,
		CustomerInvoiceID: &invoiceID,
		Amount:            amount,
		Reason:            "uncollectible",
	}
}

func jobWriteOff(node *snowflake.Node, jobID snowflake.ID, amount float64) domain.WriteOffRecord {
	return domain.WriteOffRecord{
		ID:            node.Generate(),
		CustomerID:    1,
		CustomerJobID: &jobID,
		Amount:        amount,
		Reason:        "goodwill",
	}
}

func TestEffectiveWriteOffMode(t *testing.T) {
	tests := []struct {
		name         string
		show         bool
		writeOffs    int
		transactions int
		want         bool
	}{
		{"show stays show", true, 2, 5, true},
		{"hide stays hide with transactions", false, 2, 5, false},
		{"hide forced to show without transactions", false, 2, 0, true},
		{"hide stays hide without write-offs", false, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := effectiveWriteOffMode(tt.show, tt.writeOffs, tt.transactions)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateWriteOffs_ShowModeTotalsEverything(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	writeOffs := []domain.WriteOffRecord{
		invoiceWriteOff(node, -30),
		jobWriteOff(node, node.Generate(), -20),
	}
	transactions := []domain.TransactionRecord{
		{ID: node.Generate(), CustomerID: 1, CustomerJobID: 10, Total: 100, Billable: true},
	}

	agg, err := e.AggregateWriteOffs(writeOffs, transactions, true)
	require.NoError(t, err)
	assert.True(t, agg.Show)
	assert.Equal(t, -50.0, agg.Total)
	assert.Len(t, agg.Records, 2)
	assert.Len(t, agg.JobRecords, 1)
}

func TestAggregateWriteOffs_HideModeTotalsInvoiceTaggedOnly(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	writeOffs := []domain.WriteOffRecord{
		invoiceWriteOff(node, -30),
		jobWriteOff(node, 10, -20),
	}
	transactions := []domain.TransactionRecord{
		{ID: node.Generate(), CustomerID: 1, CustomerJobID: 10, Total: 100, Billable: true},
	}

	agg, err := e.AggregateWriteOffs(writeOffs, transactions, false)
	require.NoError(t, err)
	assert.False(t, agg.Show)
	assert.Equal(t, -30.0, agg.Total)
	require.Len(t, agg.Records, 1)
	assert.True(t, agg.Records[0].IsInvoiceTagged())
	require.Len(t, agg.JobRecords, 1)
	assert.True(t, agg.JobRecords[0].IsJobTagged())
}

func TestAggregateWriteOffs_AutoOverrideWithoutTransactions(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	// Hide requested, but the customer has nothing except write-offs: both
	// records must count, not just the invoice-tagged one.
	writeOffs := []domain.WriteOffRecord{
		invoiceWriteOff(node, -30),
		jobWriteOff(node, 10, -20),
	}

	agg, err := e.AggregateWriteOffs(writeOffs, nil, false)
	require.NoError(t, err)
	assert.True(t, agg.Show)
	assert.Equal(t, -50.0, agg.Total)
	assert.Len(t, agg.Records, 2)
}

func TestAggregateWriteOffs_NaNAmountFailsValidation(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	bad := invoiceWriteOff(node, math.NaN())

	_, err := e.AggregateWriteOffs([]domain.WriteOffRecord{bad}, nil, true)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "writeOffTotal", vErr.Total)
}
