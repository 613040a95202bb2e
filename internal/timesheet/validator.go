// Package timesheet validates uploaded timesheet CSVs row by row. A bad row
// becomes a finding; it never aborts the rest of the file.
package timesheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Expected column order: employee_id, customer_id, work_date, hours,
// description. A header row is required.
const expectedColumns = 5

const dateLayout = "2006-01-02"

// maxHoursPerDay bounds a single timesheet row.
const maxHoursPerDay = 24

// Entry is one valid timesheet row.
type Entry struct {
	Row         int          `json:"row"`
	EmployeeID  string       `json:"employee_id"`
	CustomerID  snowflake.ID `json:"customer_id"`
	WorkDate    time.Time    `json:"work_date"`
	Hours       float64      `json:"hours"`
	Description string       `json:"description,omitempty"`
}

// Finding reports one rejected field. Row numbering is 1-based and counts
// the header.
type Finding struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// Report summarizes one validation pass.
type Report struct {
	Rows     int       `json:"rows"`
	Entries  []Entry   `json:"entries"`
	Findings []Finding `json:"findings,omitempty"`
}

// ValidateCSV reads the whole file and validates every data row. Rows with
// findings are excluded from Entries but never stop the scan; only an
// unreadable stream returns an error.
func ValidateCSV(r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var report Report
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read timesheet csv: %w", err)
		}
		rowNum++
		if rowNum == 1 {
			if looksLikeData(record) {
				// The file starts with data. Flag it and validate the
				// row instead of swallowing it as a header.
				report.Findings = append(report.Findings, Finding{
					Row:    rowNum,
					Field:  "header",
					Value:  strings.Join(record, ","),
					Reason: "missing header row",
				})
			} else {
				continue
			}
		}
		report.Rows++

		if len(record) != expectedColumns {
			report.Findings = append(report.Findings, Finding{
				Row:    rowNum,
				Field:  "row",
				Value:  strconv.Itoa(len(record)),
				Reason: fmt.Sprintf("expected %d columns", expectedColumns),
			})
			continue
		}

		entry, findings := validateRow(rowNum, record)
		if len(findings) > 0 {
			report.Findings = append(report.Findings, findings...)
			continue
		}
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

// looksLikeData distinguishes a first row of data from a header by its
// work_date column, which no header label parses as.
func looksLikeData(record []string) bool {
	if len(record) != expectedColumns {
		return false
	}
	_, err := time.Parse(dateLayout, strings.TrimSpace(record[2]))
	return err == nil
}

func validateRow(row int, record []string) (Entry, []Finding) {
	var findings []Finding
	entry := Entry{Row: row, Description: strings.TrimSpace(record[4])}

	entry.EmployeeID = strings.TrimSpace(record[0])
	if entry.EmployeeID == "" {
		findings = append(findings, Finding{
			Row: row, Field: "employee_id", Value: record[0], Reason: "employee id is required",
		})
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(record[1]))
	if err != nil {
		findings = append(findings, Finding{
			Row: row, Field: "customer_id", Value: record[1], Reason: "customer id is not a valid identifier",
		})
	} else {
		entry.CustomerID = customerID
	}

	workDate, err := time.Parse(dateLayout, strings.TrimSpace(record[2]))
	if err != nil {
		findings = append(findings, Finding{
			Row: row, Field: "work_date", Value: record[2], Reason: "work date must be YYYY-MM-DD",
		})
	} else {
		entry.WorkDate = workDate
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
	switch {
	case err != nil:
		findings = append(findings, Finding{
			Row: row, Field: "hours", Value: record[3], Reason: "hours must be a number",
		})
	case hours <= 0 || hours > maxHoursPerDay:
		findings = append(findings, Finding{
			Row: row, Field: "hours", Value: record[3],
			Reason: fmt.Sprintf("hours must be greater than 0 and at most %d", maxHoursPerDay),
		})
	default:
		entry.Hours = hours
	}

	return entry, findings
}
