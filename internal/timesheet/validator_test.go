package timesheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "employee_id,customer_id,work_date,hours,description\n"

func TestValidateCSVAcceptsValidRows(t *testing.T) {
	input := header +
		"E100,1948576230123456789,2026-08-03,7.5,Contract drafting\n" +
		"E101,1948576230123456789,2026-08-04,8,Deposition prep\n"

	report, err := ValidateCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Rows)
	assert.Empty(t, report.Findings)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "E100", report.Entries[0].EmployeeID)
	assert.InDelta(t, 7.5, report.Entries[0].Hours, 1e-9)
	assert.Equal(t, "Deposition prep", report.Entries[1].Description)
}

func TestValidateCSVPerRowFindings(t *testing.T) {
	tests := []struct {
		name  string
		row   string
		field string
	}{
		{"missing employee id", ",1948576230123456789,2026-08-03,8,work", "employee_id"},
		{"bad customer id", "E100,not-an-id,2026-08-03,8,work", "customer_id"},
		{"bad date format", "E100,1948576230123456789,08/03/2026,8,work", "work_date"},
		{"hours not a number", "E100,1948576230123456789,2026-08-03,eight,work", "hours"},
		{"hours over limit", "E100,1948576230123456789,2026-08-03,25,work", "hours"},
		{"zero hours", "E100,1948576230123456789,2026-08-03,0,work", "hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ValidateCSV(strings.NewReader(header + tt.row + "\n"))
			require.NoError(t, err)
			assert.Empty(t, report.Entries)
			require.NotEmpty(t, report.Findings)
			assert.Equal(t, tt.field, report.Findings[0].Field)
			assert.Equal(t, 2, report.Findings[0].Row)
		})
	}
}

func TestValidateCSVBadRowDoesNotStopScan(t *testing.T) {
	input := header +
		"E100,1948576230123456789,2026-08-03,8,ok\n" +
		"E101,bogus,2026-08-04,8,rejected\n" +
		"E102,1948576230123456789,2026-08-05,6,ok\n"

	report, err := ValidateCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Rows)
	assert.Len(t, report.Entries, 2)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, 3, report.Findings[0].Row)
}

func TestValidateCSVWrongColumnCount(t *testing.T) {
	input := header + "E100,1948576230123456789,2026-08-03\n"

	report, err := ValidateCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "row", report.Findings[0].Field)
	assert.Empty(t, report.Entries)
}

func TestValidateCSVMissingHeader(t *testing.T) {
	input := "E100,1948576230123456789,2026-08-03,8,no header above\n" +
		"E101,1948576230123456789,2026-08-04,6,ok\n"

	report, err := ValidateCSV(strings.NewReader(input))
	require.NoError(t, err)

	// The first data row is flagged but still validated, not dropped.
	assert.Equal(t, 2, report.Rows)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "E100", report.Entries[0].EmployeeID)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "header", report.Findings[0].Field)
	assert.Equal(t, 1, report.Findings[0].Row)
	assert.Equal(t, "missing header row", report.Findings[0].Reason)
}

func TestValidateCSVMultipleFindingsSameRow(t *testing.T) {
	input := header + ",bogus,nope,99,work\n"

	report, err := ValidateCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, report.Findings, 4)
}
