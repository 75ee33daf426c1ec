// Package fiscal orquestra o ciclo de vida dos documentos fiscais de
// movimentação: emissão de remessa e retorno, sincronização de status,
// cancelamento e carta de correção.
package fiscal

import (
	"context"
	"time"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
	"github.com/locagora/fiscal-api/pkg/logger"
)

// Orchestrator coordena repositórios, gateway e guarda de certificados.
// Cada operação é delimitada pelo tenant do chamador.
type Orchestrator struct {
	docs       repository.FiscalDocumentRepository
	profiles   repository.TenantProfileRepository
	bookings   repository.BookingRepository
	customers  repository.CustomerRepository
	equipments repository.EquipmentRepository

	gw    Gateway
	tx    TxRunner
	enc   Encryptor
	certs CertificateStore

	renderer XMLRenderer
	signer   XMLSigner
	pdf      PDFGenerator

	log *logger.Logger
	now func() time.Time
}

// NewOrchestrator monta o orquestrador com todas as dependências.
func NewOrchestrator(
	docs repository.FiscalDocumentRepository,
	profiles repository.TenantProfileRepository,
	bookings repository.BookingRepository,
	customers repository.CustomerRepository,
	equipments repository.EquipmentRepository,
	gw Gateway,
	tx TxRunner,
	enc Encryptor,
	certs CertificateStore,
	renderer XMLRenderer,
	signer XMLSigner,
	pdf PDFGenerator,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		docs:       docs,
		profiles:   profiles,
		bookings:   bookings,
		customers:  customers,
		equipments: equipments,
		gw:         gw,
		tx:         tx,
		enc:        enc,
		certs:      certs,
		renderer:   renderer,
		signer:     signer,
		pdf:        pdf,
		log:        log,
		now:        time.Now,
	}
}

// gatewayAuth decifra a credencial do tenant e monta a autenticação por chamada.
func (o *Orchestrator) gatewayAuth(profile *entity.TenantFiscalProfile) (gateway.Auth, error) {
	token, err := o.enc.Decrypt(profile.GatewayToken)
	if err != nil {
		return gateway.Auth{}, &domain.ConfigurationError{Missing: []string{"credencial do gateway ilegível"}}
	}
	return gateway.Auth{Token: token, Environment: profile.Environment}, nil
}

// getOwnedDocument carrega o documento e garante que pertence ao tenant.
func (o *Orchestrator) getOwnedDocument(ctx context.Context, tenantID, docID string) (*entity.FiscalDocument, error) {
	doc, err := o.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// GetDocument devolve o documento do tenant com suas linhas.
func (o *Orchestrator) GetDocument(ctx context.Context, tenantID, docID string) (*entity.FiscalDocument, []*entity.FiscalDocumentItem, error) {
	doc, err := o.getOwnedDocument(ctx, tenantID, docID)
	if err != nil {
		return nil, nil, err
	}
	items, err := o.docs.GetItems(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	return doc, items, nil
}

// ListByBooking lista os documentos de uma locação do tenant.
func (o *Orchestrator) ListByBooking(ctx context.Context, tenantID, bookingID string) ([]*entity.FiscalDocument, error) {
	booking, err := o.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	return o.docs.ListByBooking(ctx, bookingID)
}
