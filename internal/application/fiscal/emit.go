package fiscal

import (
	"context"

	"github.com/google/uuid"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/nfe"
	"github.com/locagora/fiscal-api/internal/domain/repository"
)

// EmitOutbound emite a nota de remessa dos equipamentos da locação.
// equipmentIDs vazio cobre todos os itens; preenchido, restringe a emissão ao
// subconjunto indicado (cada ID precisa pertencer à locação).
func (o *Orchestrator) EmitOutbound(ctx context.Context, tenantID, bookingID string, equipmentIDs []string) (*entity.FiscalDocument, error) {
	return o.emit(ctx, tenantID, bookingID, equipmentIDs, entity.MovementOutbound)
}

// EmitReturn emite a nota de retorno, referenciando a remessa autorizada da
// mesma locação. equipmentIDs segue a mesma semântica do EmitOutbound e
// permite o retorno parcial.
func (o *Orchestrator) EmitReturn(ctx context.Context, tenantID, bookingID string, equipmentIDs []string) (*entity.FiscalDocument, error) {
	return o.emit(ctx, tenantID, bookingID, equipmentIDs, entity.MovementReturn)
}

// emit é o fluxo comum de emissão. Toda validação local acontece ANTES da
// primeira chamada de rede; o documento é persistido como PENDING antes do
// envio para que nenhuma resposta se perca.
func (o *Orchestrator) emit(ctx context.Context, tenantID, bookingID string, equipmentIDs []string, movement entity.MovementType) (*entity.FiscalDocument, error) {
	// ── 1. Perfil fiscal apto ─────────────────────────────────────────────
	profile, err := o.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := checkReadiness(profile, o.now()); err != nil {
		return nil, err
	}

	// ── 2. Locação elegível ───────────────────────────────────────────────
	booking, err := o.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.TenantID != tenantID {
		return nil, domain.ErrForbidden
	}
	if !booking.Eligible() {
		return nil, domain.ErrBookingNotEligible
	}
	if len(booking.Items) == 0 {
		return nil, &domain.IncompleteDataError{Missing: []string{"locação sem equipamentos"}}
	}
	bookingItems, err := selectBookingItems(booking.Items, equipmentIDs)
	if err != nil {
		return nil, err
	}

	// ── 3. Unicidade de documento ativo ───────────────────────────────────
	// Caminho rápido; a corrida residual é fechada pelo índice único parcial
	// na criação.
	if existing, err := o.docs.FindActiveByBooking(ctx, bookingID, movement, entity.ActiveStatuses); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.InvariantViolationError{
			Message: "já existe documento ativo de " + string(movement) + " para esta locação (" + existing.ID + ")",
		}
	}

	// ── 4. Cadeia de referência (somente retorno) ─────────────────────────
	var referenced *entity.FiscalDocument
	if movement == entity.MovementReturn {
		referenced, err = o.docs.FindActiveByBooking(ctx, bookingID, entity.MovementOutbound,
			[]entity.DocumentStatus{entity.StatusAuthorized})
		if err != nil {
			return nil, err
		}
		if referenced == nil || referenced.AccessKey == "" {
			return nil, domain.ErrReferenceNotAuthorized
		}
		if dup, err := o.docs.FindActiveByReference(ctx, referenced.ID, entity.MovementReturn, entity.ActiveStatuses); err != nil {
			return nil, err
		} else if dup != nil {
			return nil, &domain.InvariantViolationError{
				Message: "já existe retorno ativo referenciando a remessa " + referenced.ID,
			}
		}
	}

	// ── 5. Snapshot do destinatário e linhas ──────────────────────────────
	customer, err := o.customers.GetByID(ctx, booking.CustomerID)
	if err != nil {
		return nil, err
	}
	lines, err := o.buildLines(ctx, bookingItems)
	if err != nil {
		return nil, err
	}

	// ── 6. Payload puro ───────────────────────────────────────────────────
	var referencedKey string
	if referenced != nil {
		referencedKey = referenced.AccessKey
	}
	payload, err := nfe.Build(movement,
		nfe.Issuer{
			CorporateName:     profile.CorporateName,
			TaxID:             profile.TaxID,
			StateRegistration: profile.StateRegistration,
			TaxRegime:         profile.TaxRegime,
			Address:           profile.Address,
		},
		nfe.Counterparty{
			Name:              customer.Name,
			TaxID:             customer.TaxID,
			StateRegistration: customer.StateRegistration,
			IsStateRegExempt:  customer.IsStateRegExempt,
			Address:           customer.Address,
		},
		lines,
		nfe.TaxConfig{
			CFOPOutboundSameState:  profile.CFOPOutboundSameState,
			CFOPOutboundOtherState: profile.CFOPOutboundOtherState,
			CFOPReturnSameState:    profile.CFOPReturnSameState,
			CFOPReturnOtherState:   profile.CFOPReturnOtherState,
			DefaultTaxSituation:    profile.DefaultTaxSituation,
		},
		bookingID,
		referencedKey,
	)
	if err != nil {
		return nil, err
	}

	// ── 7. Persistência atômica como PENDING ──────────────────────────────
	doc := &entity.FiscalDocument{
		ID:           uuid.New().String(),
		TenantID:     tenantID,
		BookingID:    bookingID,
		MovementType: movement,
		Status:       entity.StatusPending,

		OperationNature: payload.OperationNature,
		CFOP:            payload.CFOP,
		GrossValue:      payload.GrossValue,
		TotalValue:      payload.TotalValue,

		CounterpartyName:     customer.Name,
		CounterpartyTaxID:    payload.CounterpartyTaxID,
		CounterpartyStateReg: customer.StateRegistration,
		CounterpartyAddress:  customer.Address,

		ReferencedAccessKey: payload.ReferencedAccessKey,
	}
	if referenced != nil {
		doc.ReferencedDocID = referenced.ID
	}

	if err := o.tx.RunFiscal(ctx, func(docs repository.FiscalDocumentRepository) error {
		if err := docs.Create(ctx, doc); err != nil {
			return err
		}
		for i, line := range payload.Lines {
			item := &entity.FiscalDocumentItem{
				DocumentID:   doc.ID,
				Sequence:     line.Sequence,
				EquipmentID:  lines[i].EquipmentID,
				ProductCode:  line.ProductCode,
				Description:  line.Description,
				NCM:          line.NCM,
				CFOP:         line.CFOP,
				TaxSituation: line.TaxSituation,
				Quantity:     line.Quantity,
				UnitValue:    line.UnitValue,
				TotalValue:   line.TotalValue,
			}
			if err := docs.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	// ── 8. Envio ao gateway ───────────────────────────────────────────────
	// A partir daqui o documento existe: qualquer falha vira ERROR com a
	// mensagem preservada, nunca perda silenciosa.
	markError := func(cause error) {
		doc.Status = entity.StatusError
		doc.ErrorMessage = cause.Error()
		if uerr := o.docs.Update(ctx, doc); uerr != nil {
			o.log.Error().Err(uerr).Str("document_id", doc.ID).
				Msg("falha ao persistir status de erro do documento")
		}
	}

	auth, err := o.gatewayAuth(profile)
	if err != nil {
		markError(err)
		return doc, err
	}

	resp, err := o.gw.Submit(ctx, auth, doc.InternalRef, payload)
	if err != nil {
		markError(err)
		o.log.Warn().Err(err).Str("document_id", doc.ID).Str("booking_id", bookingID).
			Msg("falha no envio ao gateway fiscal")
		return doc, err
	}

	applyResponse(doc, resp, o.now())
	if err := o.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	o.log.Info().
		Str("document_id", doc.ID).
		Str("booking_id", bookingID).
		Str("movement", string(movement)).
		Str("status", string(doc.Status)).
		Str("gateway_status", doc.GatewayStatus).
		Msg("documento fiscal emitido")
	return doc, nil
}

// selectBookingItems resolve o subconjunto de itens a emitir. Lista vazia
// cobre a locação inteira; IDs fora da locação são recusados antes de
// qualquer rede.
func selectBookingItems(items []entity.BookingItem, equipmentIDs []string) ([]entity.BookingItem, error) {
	if len(equipmentIDs) == 0 {
		return items, nil
	}
	byEquipment := make(map[string]entity.BookingItem, len(items))
	for _, item := range items {
		byEquipment[item.EquipmentID] = item
	}
	selected := make([]entity.BookingItem, 0, len(equipmentIDs))
	seen := make(map[string]bool, len(equipmentIDs))
	for _, id := range equipmentIDs {
		item, ok := byEquipment[id]
		if !ok {
			return nil, &domain.ValidationError{
				Field:   "equipment_ids",
				Message: "equipamento " + id + " não pertence à locação",
			}
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, item)
	}
	return selected, nil
}

// buildLines converte as linhas da reserva em linhas de emissão, resolvendo o
// cadastro de cada equipamento. Valor declarado: o da reserva ou, na falta, o
// valor de reposição do equipamento.
func (o *Orchestrator) buildLines(ctx context.Context, items []entity.BookingItem) ([]nfe.LineItem, error) {
	lines := make([]nfe.LineItem, 0, len(items))
	for _, item := range items {
		eq, err := o.equipments.GetByID(ctx, item.EquipmentID)
		if err != nil {
			return nil, err
		}
		unitValue := item.UnitValue
		if !unitValue.IsPositive() {
			unitValue = eq.ReplacementValue
		}
		lines = append(lines, nfe.LineItem{
			EquipmentID: eq.ID,
			ProductCode: eq.Code,
			Description: eq.Name,
			NCM:         eq.NCM,
			Quantity:    item.Quantity,
			UnitValue:   unitValue,
		})
	}
	return lines, nil
}
