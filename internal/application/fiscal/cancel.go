package fiscal

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// A SEFAZ exige justificativa mínima de 15 caracteres para cancelamento e
// carta de correção. Validamos localmente para não queimar uma chamada.
const minJustificationLen = 15

func validateJustification(field, text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minJustificationLen {
		return &domain.ValidationError{
			Field:   field,
			Message: "deve ter ao menos 15 caracteres",
		}
	}
	return nil
}

// Cancel cancela um documento AUTHORIZED junto ao gateway. A justificativa é
// validada antes de qualquer rede; qualquer outro status é recusado.
func (o *Orchestrator) Cancel(ctx context.Context, tenantID, docID, justification string) (*entity.FiscalDocument, error) {
	if err := validateJustification("justificativa", justification); err != nil {
		return nil, err
	}

	doc, err := o.getOwnedDocument(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.StatusAuthorized {
		return nil, domain.ErrDocumentNotCancellable
	}

	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	auth, err := o.gatewayAuth(profile)
	if err != nil {
		return nil, err
	}

	resp, err := o.gw.Cancel(ctx, auth, doc.InternalRef, justification)
	if err != nil {
		return nil, err
	}
	// Só o status "cancelado" confirma o cancelamento. Qualquer outra resposta
	// (mesmo 2xx) deixa o documento AUTHORIZED intacto: a única transição legal
	// a partir de AUTHORIZED é para CANCELLED.
	if mapGatewayStatus(resp.Status) != entity.StatusCancelled {
		return nil, &domain.GatewayError{
			Message: "cancelamento não confirmado pelo gateway (status " + strconv.Quote(resp.Status) + ")",
		}
	}

	doc.CancelReason = justification
	applyResponse(doc, resp, o.now())
	if err := o.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	o.log.Info().
		Str("document_id", doc.ID).
		Str("status", string(doc.Status)).
		Msg("cancelamento processado")
	return doc, nil
}

// CorrectionLetter registra uma carta de correção para um documento
// AUTHORIZED. Correções não alteram valores nem itens; o documento permanece
// autorizado.
func (o *Orchestrator) CorrectionLetter(ctx context.Context, tenantID, docID, correction string) (*entity.FiscalDocument, error) {
	if err := validateJustification("correcao", correction); err != nil {
		return nil, err
	}

	doc, err := o.getOwnedDocument(ctx, tenantID, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.StatusAuthorized {
		return nil, &domain.ValidationError{
			Field:   "status",
			Message: "carta de correção exige documento autorizado",
		}
	}

	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	auth, err := o.gatewayAuth(profile)
	if err != nil {
		return nil, err
	}

	if _, err := o.gw.Correct(ctx, auth, doc.InternalRef, correction); err != nil {
		return nil, err
	}

	o.log.Info().Str("document_id", doc.ID).Msg("carta de correção registrada")
	return doc, nil
}
