// Package pdf renders assembled invoice documents to PDF byte buffers.
package pdf

import "context"

// LineItem is one printed row in a document section.
type LineItem struct {
	Description string
	Amount      string
}

// InvoiceDocumentData is the fully assembled, display-ready invoice detail.
// All amounts arrive preformatted; the renderer does no arithmetic.
type InvoiceDocumentData struct {
	FirmName    string
	FirmAddress string
	FirmEmail   string
	Logo        []byte

	InvoiceNumber string
	IssueDate     string
	DueDate       string

	BillToName    string
	BillToAddress string
	BillToEmail   string

	OutstandingItems []LineItem
	JobItems         []LineItem
	WriteOffItems    []LineItem
	PaymentItems     []LineItem
	RetainerItems    []LineItem

	OutstandingTotal  string
	TransactionsTotal string
	WriteOffTotal     string
	PaymentTotal      string
	RemainingRetainer string
	BalanceDue        string
}

// Provider renders one assembled invoice detail to a byte buffer.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceDocumentData) ([]byte, error)
}

// NoOpProvider renders nothing; used where tests need the pipeline without
// PDF generation.
type NoOpProvider struct{}

func (NoOpProvider) GenerateInvoice(ctx context.Context, data InvoiceDocumentData) ([]byte, error) {
	return nil, nil
}
