package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/nfe"
	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
	"github.com/locagora/fiscal-api/pkg/logger"
	pkgnfe "github.com/locagora/fiscal-api/pkg/nfe"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositório de documentos em memória
// ──────────────────────────────────────────────────────────────────────────────

type fakeDocRepo struct {
	docs      map[string]*entity.FiscalDocument
	items     map[string][]*entity.FiscalDocumentItem
	createErr error
	updates   int
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		docs:  make(map[string]*entity.FiscalDocument),
		items: make(map[string][]*entity.FiscalDocumentItem),
	}
}

func (f *fakeDocRepo) Create(_ context.Context, doc *entity.FiscalDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	if doc.InternalRef == "" {
		doc.InternalRef = "fd-" + doc.ID
	}
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocRepo) CreateItem(_ context.Context, item *entity.FiscalDocumentItem) error {
	f.items[item.DocumentID] = append(f.items[item.DocumentID], item)
	return nil
}

func (f *fakeDocRepo) Update(_ context.Context, doc *entity.FiscalDocument) error {
	f.updates++
	cp := *doc
	f.docs[doc.ID] = &cp
	return nil
}

func (f *fakeDocRepo) GetByID(_ context.Context, id string) (*entity.FiscalDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeDocRepo) GetItems(_ context.Context, documentID string) ([]*entity.FiscalDocumentItem, error) {
	return f.items[documentID], nil
}

func (f *fakeDocRepo) FindActiveByBooking(_ context.Context, bookingID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error) {
	for _, doc := range f.docs {
		if doc.BookingID == bookingID && doc.MovementType == movement && statusIn(doc.Status, statuses) {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDocRepo) FindActiveByReference(_ context.Context, referencedDocID string, movement entity.MovementType, statuses []entity.DocumentStatus) (*entity.FiscalDocument, error) {
	for _, doc := range f.docs {
		if doc.ReferencedDocID == referencedDocID && doc.MovementType == movement && statusIn(doc.Status, statuses) {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDocRepo) ListByBooking(_ context.Context, bookingID string) ([]*entity.FiscalDocument, error) {
	var out []*entity.FiscalDocument
	for _, doc := range f.docs {
		if doc.BookingID == bookingID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func statusIn(s entity.DocumentStatus, list []entity.DocumentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Demais portas
// ──────────────────────────────────────────────────────────────────────────────

type fakeProfiles struct {
	profile *entity.TenantFiscalProfile
}

func (f *fakeProfiles) GetByTenantID(_ context.Context, _ string) (*entity.TenantFiscalProfile, error) {
	if f.profile == nil {
		return nil, domain.ErrNotFound
	}
	return f.profile, nil
}
func (f *fakeProfiles) UpdateCertificate(_ context.Context, _ string, _ []byte, _ string, _ time.Time) error {
	return nil
}
func (f *fakeProfiles) ClearCertificate(_ context.Context, _ string) error { return nil }
func (f *fakeProfiles) ListCertificatesExpiringBefore(_ context.Context, _ time.Time) ([]repository.CertificateExpiry, error) {
	return nil, nil
}

type fakeBookings struct {
	booking *entity.Booking
}

func (f *fakeBookings) GetByID(_ context.Context, _ string) (*entity.Booking, error) {
	if f.booking == nil {
		return nil, domain.ErrNotFound
	}
	return f.booking, nil
}

type fakeCustomers struct {
	customer *entity.Customer
}

func (f *fakeCustomers) GetByID(_ context.Context, _ string) (*entity.Customer, error) {
	if f.customer == nil {
		return nil, domain.ErrNotFound
	}
	return f.customer, nil
}

type fakeEquipments struct {
	byID map[string]*entity.Equipment
}

func (f *fakeEquipments) GetByID(_ context.Context, id string) (*entity.Equipment, error) {
	eq, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return eq, nil
}

type fakeGateway struct {
	submitResp *gateway.Response
	submitErr  error
	queryResp  *gateway.Response
	queryErr   error
	cancelResp *gateway.Response
	cancelErr  error

	submitCalls  int
	queryCalls   int
	cancelCalls  int
	correctCalls int
	lastRef      string
	lastPayload  *nfe.Document
	lastAuth     gateway.Auth
}

func (f *fakeGateway) Submit(_ context.Context, auth gateway.Auth, ref string, doc *nfe.Document) (*gateway.Response, error) {
	f.submitCalls++
	f.lastRef = ref
	f.lastPayload = doc
	f.lastAuth = auth
	return f.submitResp, f.submitErr
}

func (f *fakeGateway) Query(_ context.Context, auth gateway.Auth, ref string) (*gateway.Response, error) {
	f.queryCalls++
	f.lastRef = ref
	f.lastAuth = auth
	return f.queryResp, f.queryErr
}

func (f *fakeGateway) Cancel(_ context.Context, auth gateway.Auth, ref, _ string) (*gateway.Response, error) {
	f.cancelCalls++
	f.lastRef = ref
	f.lastAuth = auth
	return f.cancelResp, f.cancelErr
}

func (f *fakeGateway) Correct(_ context.Context, _ gateway.Auth, _, _ string) (*gateway.Response, error) {
	f.correctCalls++
	return &gateway.Response{Status: "autorizado"}, nil
}

type fakeTx struct {
	docs *fakeDocRepo
}

func (f *fakeTx) RunFiscal(ctx context.Context, fn func(docs repository.FiscalDocumentRepository) error) error {
	return fn(f.docs)
}

type fakeEnc struct{}

func (fakeEnc) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (fakeEnc) Decrypt(encoded string) (string, error) {
	if len(encoded) < 4 || encoded[:4] != "enc:" {
		return "", errors.New("ciphertext desconhecido")
	}
	return encoded[4:], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Cenário base: tenant configurado, locação confirmada com dois equipamentos
// ──────────────────────────────────────────────────────────────────────────────

type world struct {
	orch     *Orchestrator
	docs     *fakeDocRepo
	profiles *fakeProfiles
	bookings *fakeBookings
	gw       *fakeGateway
	now      time.Time
}

func newWorld() *world {
	now := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	certExpiry := now.Add(180 * 24 * time.Hour)

	profiles := &fakeProfiles{profile: &entity.TenantFiscalProfile{
		TenantID:          "tenant-1",
		CorporateName:     "Locagora Equipamentos Ltda",
		TaxID:             "12345678000195",
		StateRegistration: "110042490114",
		TaxRegime:         "simples_nacional",
		Address: entity.Address{
			Street: "Av. das Nações", Number: "1000", District: "Centro",
			City: "São Paulo", State: "SP", ZipCode: "01000-000",
		},
		CFOPOutboundSameState:  pkgnfe.CFOPOutboundSameState,
		CFOPOutboundOtherState: pkgnfe.CFOPOutboundOtherState,
		CFOPReturnSameState:    pkgnfe.CFOPReturnSameState,
		CFOPReturnOtherState:   pkgnfe.CFOPReturnOtherState,
		DefaultTaxSituation:    pkgnfe.CSTNotTaxed,
		FiscalEnabled:          true,
		Environment:            entity.EnvironmentSandbox,
		GatewayToken:           "enc:tok-tenant-1",
		CertificateFile:        []byte{1, 2, 3},
		CertificatePassword:    "enc:senha",
		CertificateExpiresAt:   &certExpiry,
	}}

	bookings := &fakeBookings{booking: &entity.Booking{
		ID:         "loc-1",
		TenantID:   "tenant-1",
		CustomerID: "cli-1",
		Status:     entity.BookingConfirmed,
		Items: []entity.BookingItem{
			{EquipmentID: "eq-1", Quantity: decimal.NewFromInt(2), UnitValue: decimal.NewFromInt(500)},
			{EquipmentID: "eq-2", Quantity: decimal.NewFromInt(1), UnitValue: decimal.NewFromInt(200)},
		},
	}}

	customers := &fakeCustomers{customer: &entity.Customer{
		ID: "cli-1", TenantID: "tenant-1",
		Name:              "Construtora Horizonte S/A",
		TaxID:             "98765432000110",
		StateRegistration: "283305054119",
		Address: entity.Address{
			Street: "Rua das Obras", Number: "55", District: "Industrial",
			City: "Campinas", State: "SP", ZipCode: "13000-000",
		},
	}}

	equipments := &fakeEquipments{byID: map[string]*entity.Equipment{
		"eq-1": {ID: "eq-1", TenantID: "tenant-1", Code: "AND-300", Name: "Andaime fachadeiro", NCM: "7308.40.00", ReplacementValue: decimal.NewFromInt(800)},
		"eq-2": {ID: "eq-2", TenantID: "tenant-1", Code: "BET-120", Name: "Betoneira 120L", NCM: "8474.31.00", ReplacementValue: decimal.NewFromInt(300)},
	}}

	docs := newFakeDocRepo()
	gw := &fakeGateway{
		submitResp: &gateway.Response{Status: "processando_autorizacao"},
	}

	orch := NewOrchestrator(docs, profiles, bookings, customers, equipments,
		gw, &fakeTx{docs: docs}, fakeEnc{}, nil, nil, nil, nil,
		logger.New(logger.Config{Env: "production", Level: "error"}))
	orch.now = func() time.Time { return now }

	return &world{orch: orch, docs: docs, profiles: profiles, bookings: bookings, gw: gw, now: now}
}

// seedAuthorizedOutbound injeta uma remessa já autorizada da locação loc-1.
func (w *world) seedAuthorizedOutbound() *entity.FiscalDocument {
	authorizedAt := w.now.Add(-48 * time.Hour)
	doc := &entity.FiscalDocument{
		ID:           "doc-remessa",
		TenantID:     "tenant-1",
		BookingID:    "loc-1",
		InternalRef:  "fd-doc-remessa",
		MovementType: entity.MovementOutbound,
		Status:       entity.StatusAuthorized,
		AccessKey:    "35230612345678000195550010000001231000001234",
		Number:       "123",
		Series:       "1",
		AuthorizedAt: &authorizedAt,
	}
	w.docs.docs[doc.ID] = doc
	return doc
}
