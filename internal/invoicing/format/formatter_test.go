package format

import (
	"testing"
	"time"

	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	got, err := FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 42, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-0042-01", got)
}

func TestFormatInvoiceNumber_RejectsBadInput(t *testing.T) {
	issued := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := FormatInvoiceNumber("", issued, 1, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issued, 0, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("{YYYY}-{BOGUS}", issued, 1, 1)
	assert.Error(t, err)
}

func TestParseInvoiceNumber(t *testing.T) {
	parts, err := ParseInvoiceNumber("2026-0042-03")
	require.NoError(t, err)
	assert.Equal(t, InvoiceNumberParts{Year: 2026, Sequence: 42, Revision: 3}, parts)
}

func TestParseInvoiceNumber_Malformed(t *testing.T) {
	for _, number := range []string{"", "2026-42-1", "INV-2026-0042", "2026_0042_01"} {
		_, err := ParseInvoiceNumber(number)
		var fErr *domain.FormatError
		require.ErrorAs(t, err, &fErr, "number %q", number)
		assert.Equal(t, "invoice_number", fErr.Field)
	}
}

func TestNextRevision(t *testing.T) {
	next, err := NextRevision("2026-0042-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-0042-02", next)

	_, err = NextRevision("not-a-number")
	assert.Error(t, err)
}
