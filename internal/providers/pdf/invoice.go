package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceDocumentData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	// Letterhead
	if len(data.Logo) > 0 {
		m.AddRow(30,
			image.NewFromBytesCol(3, data.Logo, extension.Png, props.Rect{
				Center:  false,
				Percent: 80,
			}),
			col.New(9),
		)
	}
	m.AddRow(10,
		text.NewCol(8, data.FirmName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "Invoice", props.Text{Size: 16, Align: align.Right}),
	)
	m.AddRow(16,
		col.New(6).Add(
			text.New(data.FirmAddress, props.Text{Size: 9}),
			text.New(data.FirmEmail, props.Text{Size: 9, Top: 8}),
		),
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Size: 9, Top: 4, Align: align.Right}),
			text.New("Date due: "+data.DueDate, props.Text{Size: 9, Top: 8, Align: align.Right}),
		),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(data.BillToName, props.Text{Size: 9, Top: 4}),
			text.New(data.BillToAddress, props.Text{Size: 9, Top: 8}),
			text.New(data.BillToEmail, props.Text{Size: 9, Top: 16}),
		),
		col.New(6),
	)

	m.AddRow(12,
		text.NewCol(12, data.BalanceDue+" due "+data.DueDate, props.Text{
			Size:  13,
			Style: fontstyle.Bold,
		}),
	)

	p.addSection(m, "Outstanding invoices", data.OutstandingItems, data.OutstandingTotal)
	p.addSection(m, "Current charges", data.JobItems, data.TransactionsTotal)
	p.addSection(m, "Write-offs", data.WriteOffItems, data.WriteOffTotal)
	p.addSection(m, "Payments received", data.PaymentItems, data.PaymentTotal)
	p.addSection(m, "Retainers and prepayments", data.RetainerItems, data.RemainingRetainer)

	m.AddRow(12,
		col.New(6),
		text.NewCol(4, "Balance due", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.BalanceDue, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func (p *PDFProvider) addSection(m core.Maroto, title string, items []LineItem, total string) {
	if len(items) == 0 {
		return
	}

	m.AddRow(8,
		text.NewCol(12, title, props.Text{Style: fontstyle.Bold, Size: 9}),
	)

	rows := make([]core.Row, 0, len(items)+1)
	for _, item := range items {
		rows = append(rows, row.New(6).Add(
			text.NewCol(9, item.Description, props.Text{Size: 8}),
			text.NewCol(3, item.Amount, props.Text{Size: 8, Align: align.Right}),
		))
	}
	rows = append(rows, row.New(7).Add(
		col.New(6),
		text.NewCol(4, "Subtotal", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(2, total, props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	))
	m.AddRows(rows...)
}
