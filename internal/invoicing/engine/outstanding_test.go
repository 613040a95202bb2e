package engine

import (
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Params{Log: zap.NewNop()})
}

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

var cutoff = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

func outstandingRow(node *snowflake.Node, number string, balance float64, createdAt time.Time) domain.OutstandingInvoiceRecord {
	return domain.OutstandingInvoiceRecord{
		ID:                node.Generate(),
		CustomerID:        1,
		CustomerInvoiceID: node.Generate(),
		InvoiceNumber:     number,
		RemainingBalance:  balance,
		CreatedAt:         createdAt,
	}
}

func TestFilterOutstandingInvoices_KeepsPositiveBalanceBeforeCutoff(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	rows := []domain.OutstandingInvoiceRecord{
		outstandingRow(node, "2026-0001-01", 250, cutoff.AddDate(0, -1, 0)),
		outstandingRow(node, "2026-0002-01", 100, cutoff.AddDate(0, -2, 0)),
	}

	agg, err := e.FilterOutstandingInvoices(rows, nil, nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 350.0, agg.Total)
	assert.Len(t, agg.Records, 2)
}

func TestFilterOutstandingInvoices_DiscardsZeroBalanceWithoutTies(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	rows := []domain.OutstandingInvoiceRecord{
		outstandingRow(node, "2026-0001-01", 0, cutoff.AddDate(0, -1, 0)),
	}

	agg, err := e.FilterOutstandingInvoices(rows, nil, nil, cutoff)
	require.NoError(t, err)
	assert.Zero(t, agg.Total)
	assert.Empty(t, agg.Records)
}

func TestFilterOutstandingInvoices_PaidFlagDiscardsWholeGroup(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	// The revision still shows a balance, but an older row in the group is
	// flagged paid in full with nothing tied to the group.
	paid := outstandingRow(node, "2026-0003-01", 75, cutoff.AddDate(0, -3, 0))
	paid.PaidInFull = true
	revision := outstandingRow(node, "2026-0003-01", 75, cutoff.AddDate(0, -1, 0))

	agg, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{revision, paid}, nil, nil, cutoff)
	require.NoError(t, err)
	assert.Empty(t, agg.Records)
	assert.Zero(t, agg.Total)
}

func TestFilterOutstandingInvoices_TiedPaymentExemptsGroupFromDiscard(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	settled := outstandingRow(node, "2026-0004-01", 0, cutoff.AddDate(0, -4, 0))
	settled.PaidInFull = true
	open := outstandingRow(node, "2026-0004-01", 120, cutoff.AddDate(0, -1, 0))

	number := "2026-0004-01"
	payments := []domain.PaymentRecord{{
		ID:            node.Generate(),
		CustomerID:    1,
		InvoiceNumber: &number,
		Amount:        -40,
		FormOfPayment: domain.PaymentFormCheck,
		PaymentDate:   cutoff.AddDate(0, 0, -5),
	}}

	agg, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{settled, open}, payments, nil, cutoff)
	require.NoError(t, err)
	require.Len(t, agg.Records, 1)
	assert.Equal(t, 120.0, agg.Records[0].RemainingBalance)
}

func TestFilterOutstandingInvoices_ZeroBalanceWithPaymentStillNeverIncluded(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	// A tied payment exempts the group from discard, but a zero-balance row
	// can never pass the strictly-positive candidacy test. Locked down
	// explicitly: this row is never included.
	row := outstandingRow(node, "2026-0005-01", 0, cutoff.AddDate(0, -1, 0))
	number := "2026-0005-01"
	payments := []domain.PaymentRecord{{
		ID:            node.Generate(),
		CustomerID:    1,
		InvoiceNumber: &number,
		Amount:        -25,
		FormOfPayment: domain.PaymentFormACH,
		PaymentDate:   cutoff,
	}}

	agg, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{row}, payments, nil, cutoff)
	require.NoError(t, err)
	assert.Empty(t, agg.Records)
	assert.Zero(t, agg.Total)
}

func TestFilterOutstandingInvoices_CollapsesRevisionsToNewest(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	parent := outstandingRow(node, "2026-0006-01", 300, cutoff.AddDate(0, -3, 0))
	revision := outstandingRow(node, "2026-0006-01", 180, cutoff.AddDate(0, -1, 0))

	agg, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{parent, revision}, nil, nil, cutoff)
	require.NoError(t, err)
	require.Len(t, agg.Records, 1)
	assert.Equal(t, revision.ID, agg.Records[0].ID)
	assert.Equal(t, 180.0, agg.Total)
}

func TestFilterOutstandingInvoices_ExcludesRowsAfterCutoff(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	rows := []domain.OutstandingInvoiceRecord{
		outstandingRow(node, "2026-0007-01", 90, cutoff.AddDate(0, 1, 0)),
	}

	agg, err := e.FilterOutstandingInvoices(rows, nil, nil, cutoff)
	require.NoError(t, err)
	assert.Empty(t, agg.Records)
}

func TestFilterOutstandingInvoices_TiedWriteOffExemptsGroup(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	settled := outstandingRow(node, "2026-0008-01", 0, cutoff.AddDate(0, -2, 0))
	open := outstandingRow(node, "2026-0008-01", 60, cutoff.AddDate(0, -1, 0))

	invoiceID := settled.CustomerInvoiceID
	writeOffs := []domain.WriteOffRecord{{
		ID:                node.Generate(),
		CustomerID:        1,
		CustomerInvoiceID: &invoiceID,
		Amount:            -10,
	}}

	agg, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{settled, open}, nil, writeOffs, cutoff)
	require.NoError(t, err)
	require.Len(t, agg.Records, 1)
	assert.Equal(t, 60.0, agg.Total)
}

func TestFilterOutstandingInvoices_NaNBalanceFailsValidation(t *testing.T) {
	e := newTestEngine(t)
	node := testNode(t)

	bad := outstandingRow(node, "2026-0009-01", math.NaN(), cutoff.AddDate(0, -1, 0))

	_, err := e.FilterOutstandingInvoices([]domain.OutstandingInvoiceRecord{bad}, nil, nil, cutoff)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "outstandingInvoiceTotal", vErr.Total)
}
