package fiscal

import (
	"context"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// SyncStatus consulta o gateway e atualiza o documento. Documentos em status
// terminal não geram chamada de rede nem mudam: a sincronização nunca regride
// um desfecho já conhecido.
func (o *Orchestrator) SyncStatus(ctx context.Context, tenantID, docID string) (*entity.FiscalDocument, error) {
	doc, err := o.getOwnedDocument(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status.Terminal() {
		return doc, nil
	}

	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	auth, err := o.gatewayAuth(profile)
	if err != nil {
		return nil, err
	}

	resp, err := o.gw.Query(ctx, auth, doc.InternalRef)
	if err != nil {
		// Falha de consulta não altera o documento: o estado local continua
		// sendo a melhor informação disponível.
		return nil, err
	}

	before := doc.Status
	applyResponse(doc, resp, o.now())
	if err := o.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	if doc.Status != before {
		o.log.Info().
			Str("document_id", doc.ID).
			Str("from", string(before)).
			Str("to", string(doc.Status)).
			Str("gateway_status", doc.GatewayStatus).
			Msg("status do documento sincronizado")
	}
	return doc, nil
}
