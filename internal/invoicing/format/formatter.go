// Package format holds the stateless invoice-number helpers the assembly
// stage depends on.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/arledger/internal/invoicing/domain"
)

// Invoice numbers read YYYY-CCCC-SS: issue year, customer sequence, revision.
var invoiceNumberRe = regexp.MustCompile(`^(\d{4})-(\d{4})-(\d{2})$`)

const DefaultInvoiceNumberTemplate = "{YYYY}-{SEQ4}-{REV2}"

// InvoiceNumberParts is the decomposed form of a well-formed invoice number.
type InvoiceNumberParts struct {
	Year     int
	Sequence int
	Revision int
}

// FormatInvoiceNumber renders an invoice number from a template, issue time,
// customer sequence and revision.
//
// This function is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
func FormatInvoiceNumber(template string, issuedAt time.Time, seq, revision int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}
	if revision <= 0 {
		return "", fmt.Errorf("invalid invoice revision: %d", revision)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", issuedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedAt.Format("06"))
	out = strings.ReplaceAll(out, "{SEQ4}", fmt.Sprintf("%04d", seq))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = strings.ReplaceAll(out, "{REV2}", fmt.Sprintf("%02d", revision))
	out = strings.ReplaceAll(out, "{REV}", strconv.FormatInt(revision, 10))

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}

	return out, nil
}

// ParseInvoiceNumber splits a YYYY-CCCC-SS invoice number into its parts. A
// malformed identifier yields a FormatError.
func ParseInvoiceNumber(number string) (InvoiceNumberParts, error) {
	match := invoiceNumberRe.FindStringSubmatch(strings.TrimSpace(number))
	if match == nil {
		return InvoiceNumberParts{}, &domain.FormatError{Field: "invoice_number", Value: number}
	}

	year, _ := strconv.Atoi(match[1])
	seq, _ := strconv.Atoi(match[2])
	rev, _ := strconv.Atoi(match[3])
	return InvoiceNumberParts{Year: year, Sequence: seq, Revision: rev}, nil
}

// NextRevision bumps the revision component, preserving the rest of the
// number.
func NextRevision(number string) (string, error) {
	parts, err := ParseInvoiceNumber(number)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%04d-%02d", parts.Year, parts.Sequence, parts.Revision+1), nil
}
