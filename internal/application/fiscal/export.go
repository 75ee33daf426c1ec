package fiscal

import (
	"context"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// ExportSignedXML gera o XML da nota no leiaute NF-e e o assina com o
// certificado do tenant. Disponível apenas para documentos autorizados; serve
// de cópia de auditoria independente do gateway.
func (o *Orchestrator) ExportSignedXML(ctx context.Context, tenantID, docID string) ([]byte, error) {
	doc, items, err := o.exportable(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	xmlData, err := o.renderer.Render(doc, items, profile)
	if err != nil {
		return nil, err
	}

	certificate, err := o.certs.RetrieveForSigning(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return o.signer.Sign(xmlData, certificate)
}

// ExportDANFE gera a representação impressa (PDF) do documento autorizado.
func (o *Orchestrator) ExportDANFE(ctx context.Context, tenantID, docID string) ([]byte, error) {
	doc, items, err := o.exportable(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return o.pdf.Generate(doc, items, profile)
}

func (o *Orchestrator) exportable(ctx context.Context, tenantID, docID string) (*entity.FiscalDocument, []*entity.FiscalDocumentItem, error) {
	doc, items, err := o.GetDocument(ctx, tenantID, docID)
	if err != nil {
		return nil, nil, err
	}
	if doc.Status != entity.StatusAuthorized && doc.Status != entity.StatusCancelled {
		return nil, nil, &domain.ValidationError{
			Field:   "status",
			Message: "exportação exige documento autorizado (ou cancelado, para auditoria)",
		}
	}
	return doc, items, nil
}
