package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	archivedomain "github.com/smallbiznis/arledger/internal/archive/domain"
	"github.com/smallbiznis/arledger/internal/config"
	customerdomain "github.com/smallbiznis/arledger/internal/customer/domain"
	invoicingdomain "github.com/smallbiznis/arledger/internal/invoicing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeInvoicing struct {
	resp invoicingdomain.RunInvoicesResponse
	err  error

	lastReq invoicingdomain.RunInvoicesRequest
}

func (f *fakeInvoicing) RunInvoices(ctx context.Context, req invoicingdomain.RunInvoicesRequest) (invoicingdomain.RunInvoicesResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeInvoicing) ComputeOnly(ctx context.Context, req invoicingdomain.RunInvoicesRequest) (invoicingdomain.RunInvoicesResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeStore struct {
	docs map[string]archivedomain.ArchivedDocument
}

func (f *fakeStore) Put(ctx context.Context, req archivedomain.StoreRequest) (string, error) {
	return "", nil
}

func (f *fakeStore) Get(ctx context.Context, storageKey string) (archivedomain.ArchivedDocument, error) {
	doc, ok := f.docs[storageKey]
	if !ok {
		return archivedomain.ArchivedDocument{}, gorm.ErrRecordNotFound
	}
	return doc, nil
}

type fakeCustomers struct {
	customers map[string]customerdomain.Customer
}

func (f *fakeCustomers) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (customerdomain.Customer, error) {
	if req.Name == "" {
		return customerdomain.Customer{}, customerdomain.ErrInvalidName
	}
	return customerdomain.Customer{Name: req.Name, Email: req.Email}, nil
}

func (f *fakeCustomers) List(ctx context.Context, req customerdomain.ListCustomerRequest) (customerdomain.ListCustomerResponse, error) {
	resp := customerdomain.ListCustomerResponse{}
	for _, customer := range f.customers {
		resp.Customers = append(resp.Customers, customer)
	}
	return resp, nil
}

func (f *fakeCustomers) GetByID(ctx context.Context, req customerdomain.GetCustomerRequest) (customerdomain.Customer, error) {
	customer, ok := f.customers[req.ID]
	if !ok {
		return customerdomain.Customer{}, customerdomain.ErrNotFound
	}
	return customer, nil
}

func newTestServer(t *testing.T, svc invoicingdomain.Service, store archivedomain.Store) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	engine := NewEngine(zap.NewNop(), metrics, registry)

	return NewServer(ServerParams{
		Gin:          engine,
		Cfg:          config.Config{ShowWriteOffs: false},
		Log:          zap.NewNop(),
		InvoicingSvc: svc,
		ArchiveSvc:   store,
		CustomerSvc:  &fakeCustomers{},
		Metrics:      metrics,
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeInvoicing{}, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestComputeInvoicesAppliesConfigDefault(t *testing.T) {
	fake := &fakeInvoicing{
		resp: invoicingdomain.RunInvoicesResponse{
			Results: []invoicingdomain.InvoiceResult{{}},
		},
	}
	srv := newTestServer(t, fake, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/compute", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, fake.lastReq.ShowWriteOffs)
}

func TestGenerateInvoicesShowWriteOffsOverride(t *testing.T) {
	fake := &fakeInvoicing{}
	srv := newTestServer(t, fake, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/generate", strings.NewReader(`{"show_write_offs": true}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, fake.lastReq.ShowWriteOffs)
}

func TestGenerateInvoicesBadJSON(t *testing.T) {
	srv := newTestServer(t, &fakeInvoicing{}, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/generate", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateInvoicesUnknownCustomer(t *testing.T) {
	fake := &fakeInvoicing{err: invoicingdomain.ErrCustomerNotFound}
	srv := newTestServer(t, fake, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error.Type)
}

func TestGetInvoiceDocument(t *testing.T) {
	store := &fakeStore{docs: map[string]archivedomain.ArchivedDocument{
		"abc-123": {
			DisplayName: "Acme 2026-0001-01.pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.7"),
		},
	}}
	srv := newTestServer(t, &fakeInvoicing{}, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/invoices/documents/abc-123", nil)
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "2026-0001-01")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/invoices/documents/missing", nil)
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidateTimesheetEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeInvoicing{}, &fakeStore{})

	csv := "employee_id,customer_id,work_date,hours,description\n" +
		"E100,1948576230123456789,2026-08-03,8,ok\n" +
		"E101,bogus,2026-08-04,8,rejected\n"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/timesheets/validate", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report struct {
		Rows     int               `json:"rows"`
		Entries  []json.RawMessage `json:"entries"`
		Findings []json.RawMessage `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.Rows)
	assert.Len(t, report.Entries, 1)
	assert.Len(t, report.Findings, 1)
}

func TestCustomerEndpoints(t *testing.T) {
	srv := newTestServer(t, &fakeInvoicing{}, &fakeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/customers", strings.NewReader(`{"name":"Acme Legal","email":"billing@acme.test"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/customers", strings.NewReader(`{"email":"billing@acme.test"}`))
	req.Header.Set("Content-Type", "application/json")
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/customers/1948576230123456789", nil)
	srv.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
