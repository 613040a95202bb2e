// Package service orchestrates the invoice run: snapshot load, engine
// computation, document assembly, rendering and archival.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	archivedomain "github.com/smallbiznis/arledger/internal/archive/domain"
	"github.com/smallbiznis/arledger/internal/clock"
	"github.com/smallbiznis/arledger/internal/config"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	"github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/smallbiznis/arledger/internal/invoicing/engine"
	"github.com/smallbiznis/arledger/internal/invoicing/format"
	"github.com/smallbiznis/arledger/internal/providers/assets"
	"github.com/smallbiznis/arledger/internal/providers/pdf"
	"github.com/smallbiznis/arledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const invoiceDueDays = 30

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Repo    domain.Repository
	Engine  *engine.Engine
	PDF     pdf.Provider
	Assets  *assets.Resolver
	Archive archivedomain.Store
	GenID   *snowflake.Node
	Clock   clock.Clock
}

type Service struct {
	log     *zap.Logger
	cfg     config.Config
	repo    domain.Repository
	engine  *engine.Engine
	pdf     pdf.Provider
	assets  *assets.Resolver
	archive archivedomain.Store
	genID   *snowflake.Node
	clock   clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("invoicing.service"),
		cfg:     p.Cfg,
		repo:    p.Repo,
		engine:  p.Engine,
		pdf:     p.PDF,
		assets:  p.Assets,
		archive: p.Archive,
		genID:   p.GenID,
		clock:   p.Clock,
	}
}

// ComputeOnly runs the calculation pipeline without rendering or archiving.
// Results carry the raw computations; InvoiceNumber and StorageKey stay
// empty.
func (s *Service) ComputeOnly(ctx context.Context, req domain.RunInvoicesRequest) (domain.RunInvoicesResponse, error) {
	computations, _, failures, err := s.compute(ctx, req)
	if err != nil {
		return domain.RunInvoicesResponse{}, err
	}

	resp := domain.RunInvoicesResponse{
		Results:  make([]domain.InvoiceResult, 0, len(computations)),
		Failures: failures,
	}
	for _, computation := range computations {
		resp.Results = append(resp.Results, domain.InvoiceResult{Computation: computation})
	}
	return resp, nil
}

// RunInvoices computes, renders and archives invoices for the requested
// customers. Each customer is processed independently; a failure lands in
// Failures and the batch continues.
func (s *Service) RunInvoices(ctx context.Context, req domain.RunInvoicesRequest) (domain.RunInvoicesResponse, error) {
	computations, customers, failures, err := s.compute(ctx, req)
	if err != nil {
		return domain.RunInvoicesResponse{}, err
	}

	issuedAt := s.clock.Now()
	resp := domain.RunInvoicesResponse{
		Results:  make([]domain.InvoiceResult, 0, len(computations)),
		Failures: failures,
	}
	for _, computation := range computations {
		result, err := s.issue(ctx, computation, customers[computation.CustomerID], issuedAt)
		if err != nil {
			s.log.Warn("invoice issuance failed",
				zap.String("customer_id", computation.CustomerID.String()),
				zap.Error(err),
			)
			resp.Failures = append(resp.Failures, domain.InvoiceFailure{
				CustomerID: computation.CustomerID,
				Stage:      "issuance",
				Error:      err.Error(),
			})
			continue
		}
		resp.Results = append(resp.Results, result)
	}

	s.log.Info("invoice run complete",
		zap.Int("issued", len(resp.Results)),
		zap.Int("failed", len(resp.Failures)),
	)
	return resp, nil
}

// compute loads the snapshot and runs the engine for every requested
// customer. Per-customer computation errors become failures; only snapshot
// load errors abort the run.
func (s *Service) compute(ctx context.Context, req domain.RunInvoicesRequest) ([]domain.InvoiceComputation, map[snowflake.ID]customerdomain.Customer, []domain.InvoiceFailure, error) {
	data, err := s.repo.LoadQueryData(ctx, req.CustomerIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	customers, err := s.repo.Customers(ctx, req.CustomerIDs)
	if err != nil {
		return nil, nil, nil, err
	}

	var failures []domain.InvoiceFailure
	customerIDs := req.CustomerIDs
	if len(customerIDs) == 0 {
		customerIDs = make([]snowflake.ID, 0, len(customers))
		for id := range customers {
			customerIDs = append(customerIDs, id)
		}
		sort.Slice(customerIDs, func(i, j int) bool { return customerIDs[i] < customerIDs[j] })
	} else {
		// Requested ids with no matching customer must not reach the
		// engine; they would compute as empty zero-total invoices.
		known := make([]snowflake.ID, 0, len(customerIDs))
		for _, id := range customerIDs {
			if _, ok := customers[id]; !ok {
				failures = append(failures, domain.InvoiceFailure{
					CustomerID: id,
					Stage:      "lookup",
					Error:      domain.ErrCustomerNotFound.Error(),
				})
				continue
			}
			known = append(known, id)
		}
		customerIDs = known
	}

	if req.CutoffDate != nil {
		for id := range data.LastInvoiceDates {
			data.LastInvoiceDates[id] = *req.CutoffDate
		}
	}

	opts := domain.ComputeOptions{ShowWriteOffs: req.ShowWriteOffs}
	computations, runErr := s.engine.ComputeAll(data, customerIDs, opts)
	return computations, customers, append(failures, failuresFrom(runErr)...), nil
}

// issue renders and archives one computed invoice, then records it and
// advances the customer's cutoff.
func (s *Service) issue(ctx context.Context, computation domain.InvoiceComputation, customer customerdomain.Customer, issuedAt time.Time) (domain.InvoiceResult, error) {
	seq, err := s.repo.NextSequence(ctx, computation.CustomerID)
	if err != nil {
		return domain.InvoiceResult{}, err
	}

	const revision = 1
	invoiceNumber, err := format.FormatInvoiceNumber(s.cfg.InvoiceNumberTemplate, issuedAt, seq, revision)
	if err != nil {
		return domain.InvoiceResult{}, err
	}

	doc := s.assemble(computation, customer, invoiceNumber, issuedAt)
	content, err := s.pdf.GenerateInvoice(ctx, doc)
	if err != nil {
		return domain.InvoiceResult{}, err
	}

	result := domain.InvoiceResult{
		Computation:   computation,
		InvoiceNumber: invoiceNumber,
	}
	if len(content) > 0 {
		key, err := s.archive.Put(ctx, archivedomain.StoreRequest{
			CustomerID:  computation.CustomerID,
			DisplayName: fmt.Sprintf("%s %s.pdf", customer.Name, invoiceNumber),
			ContentType: "application/pdf",
			Content:     content,
			Metadata: map[string]any{
				"invoice_number": invoiceNumber,
				"invoice_total":  computation.InvoiceTotal,
			},
		})
		if err != nil {
			return domain.InvoiceResult{}, err
		}
		result.StorageKey = key
	}

	issued := domain.IssuedInvoice{
		ID:            s.genID.Generate(),
		CustomerID:    computation.CustomerID,
		InvoiceNumber: invoiceNumber,
		Sequence:      seq,
		Revision:      revision,
		InvoiceTotal:  computation.InvoiceTotal,
		StorageKey:    result.StorageKey,
		IssuedAt:      issuedAt,
	}
	if err := s.repo.RecordIssued(ctx, issued); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.InvoiceResult{}, fmt.Errorf("invoice number %s already issued for customer %s: %w", invoiceNumber, computation.CustomerID, err)
		}
		return domain.InvoiceResult{}, err
	}
	if err := s.repo.MarkInvoiced(ctx, computation.CustomerID, issuedAt); err != nil {
		return domain.InvoiceResult{}, err
	}

	return result, nil
}

// assemble flattens one computation into the display-ready document. The
// renderer gets preformatted strings; no arithmetic happens past this point.
func (s *Service) assemble(computation domain.InvoiceComputation, customer customerdomain.Customer, invoiceNumber string, issuedAt time.Time) pdf.InvoiceDocumentData {
	doc := pdf.InvoiceDocumentData{
		FirmName:    s.cfg.Firm.Name,
		FirmAddress: s.cfg.Firm.Address,
		FirmEmail:   s.cfg.Firm.Email,
		Logo:        s.assets.Logo(),

		InvoiceNumber: invoiceNumber,
		IssueDate:     issuedAt.Format("January 2, 2006"),
		DueDate:       issuedAt.AddDate(0, 0, invoiceDueDays).Format("January 2, 2006"),

		BillToName:    customer.Name,
		BillToAddress: customer.BillTo(),
		BillToEmail:   customer.Email,

		OutstandingTotal:  money(computation.OutstandingInvoices.Total),
		TransactionsTotal: money(computation.Transactions.Total),
		WriteOffTotal:     money(computation.WriteOffs.Total),
		PaymentTotal:      money(computation.Payments.Total),
		RemainingRetainer: money(computation.RemainingRetainer),
		BalanceDue:        money(computation.InvoiceTotal),
	}

	for _, record := range computation.OutstandingInvoices.Records {
		doc.OutstandingItems = append(doc.OutstandingItems, pdf.LineItem{
			Description: "Invoice " + record.InvoiceNumber,
			Amount:      money(record.RemainingBalance),
		})
	}
	for _, job := range computation.Transactions.Jobs {
		description := job.JobDescription
		if description == "" {
			description = "Job " + job.JobID.String()
		}
		doc.JobItems = append(doc.JobItems, pdf.LineItem{
			Description: description,
			Amount:      money(job.Total),
		})
	}
	for _, record := range computation.WriteOffs.Records {
		description := record.Reason
		if description == "" {
			description = "Write-off"
		}
		doc.WriteOffItems = append(doc.WriteOffItems, pdf.LineItem{
			Description: description,
			Amount:      money(record.Amount),
		})
	}
	for _, record := range computation.Payments.Records {
		description := string(record.FormOfPayment)
		if record.RefNumber != "" {
			description += " #" + record.RefNumber
		}
		doc.PaymentItems = append(doc.PaymentItems, pdf.LineItem{
			Description: description,
			Amount:      money(record.Amount),
		})
	}
	for _, record := range computation.Retainers.Records {
		description := record.TypeOfHold
		if description == "" {
			description = "Retainer"
		}
		doc.RetainerItems = append(doc.RetainerItems, pdf.LineItem{
			Description: description,
			Amount:      money(record.CurrentAmount),
		})
	}

	return doc
}

// money renders an amount in accounting style: credits in parentheses.
func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("($%.2f)", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

// failuresFrom unpacks a joined per-customer error into failure entries.
func failuresFrom(err error) []domain.InvoiceFailure {
	if err == nil {
		return nil
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	failures := make([]domain.InvoiceFailure, 0, len(errs))
	for _, e := range errs {
		var compErr *domain.ComputationError
		if errors.As(e, &compErr) {
			failures = append(failures, domain.InvoiceFailure{
				CustomerID: compErr.CustomerID,
				Stage:      compErr.Stage,
				Error:      e.Error(),
			})
			continue
		}
		failures = append(failures, domain.InvoiceFailure{Error: e.Error()})
	}
	return failures
}
