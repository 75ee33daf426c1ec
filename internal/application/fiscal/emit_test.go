package fiscal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
)

// ──────────────────────────────────────────────────────────────────────────────
// Remessa: fluxo feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitOutbound_FluxoFeliz(t *testing.T) {
	w := newWorld()

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusProcessing, doc.Status)
	assert.Equal(t, "processando_autorizacao", doc.GatewayStatus)
	assert.Equal(t, "5908", doc.CFOP, "mesma UF → CFOP de remessa intraestadual")
	assert.True(t, doc.TotalValue.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, 1, w.gw.submitCalls)
	assert.Equal(t, doc.InternalRef, w.gw.lastRef, "a referência interna é a chave de idempotência no gateway")
	assert.Equal(t, "tok-tenant-1", w.gw.lastAuth.Token, "o token vai decifrado na chamada")

	// Documento e itens persistidos antes do envio.
	stored, err := w.docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusProcessing, stored.Status)
	items, _ := w.docs.GetItems(context.Background(), doc.ID)
	assert.Len(t, items, 2)
}

func TestEmitOutbound_SnapshotDoDestinatario(t *testing.T) {
	w := newWorld()

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)

	assert.Equal(t, "Construtora Horizonte S/A", doc.CounterpartyName)
	assert.Equal(t, "98765432000110", doc.CounterpartyTaxID)
	assert.Equal(t, "Campinas", doc.CounterpartyAddress.City,
		"o endereço é congelado no documento; mudanças futuras no cadastro não o afetam")
}

// ──────────────────────────────────────────────────────────────────────────────
// Validações antes de qualquer rede
// ──────────────────────────────────────────────────────────────────────────────

func TestEmit_ConfiguracaoIncompletaEnumeraTudo(t *testing.T) {
	w := newWorld()
	w.profiles.profile.StateRegistration = ""
	w.profiles.profile.GatewayToken = ""
	w.profiles.profile.CertificateFile = nil

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.Error(t, err)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Missing, 3, "todas as pendências de configuração juntas: %v", cfgErr.Missing)
	assert.Equal(t, 0, w.gw.submitCalls, "configuração incompleta nunca chega ao gateway")
}

func TestEmit_CertificadoVencidoBloqueiaEmissao(t *testing.T) {
	w := newWorld()
	expired := w.now.Add(-24 * time.Hour)
	w.profiles.profile.CertificateExpiresAt = &expired

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Missing, "certificado digital vencido")
}

func TestEmit_LocacaoNaoElegivel(t *testing.T) {
	w := newWorld()
	w.bookings.booking.Status = "draft"

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	assert.ErrorIs(t, err, domain.ErrBookingNotEligible)
	assert.Equal(t, 0, w.gw.submitCalls)
}

func TestEmit_LocacaoDeOutroTenant(t *testing.T) {
	w := newWorld()

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-2", "loc-1", nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Unicidade de documento ativo
// ──────────────────────────────────────────────────────────────────────────────

func TestEmit_RemessaAtivaDuplicadaRejeitada(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	var inv *domain.InvariantViolationError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 0, w.gw.submitCalls)
}

func TestEmit_RemessaCanceladaLiberaNovaEmissao(t *testing.T) {
	w := newWorld()
	old := w.seedAuthorizedOutbound()
	old.Status = entity.StatusCancelled

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err, "documento cancelado não conta para a invariante de unicidade")
	assert.NotEqual(t, old.ID, doc.ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Retorno: cadeia de referência
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitReturn_ReferenciaRemessaAutorizada(t *testing.T) {
	w := newWorld()
	remessa := w.seedAuthorizedOutbound()

	doc, err := w.orch.EmitReturn(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementReturn, doc.MovementType)
	assert.Equal(t, remessa.ID, doc.ReferencedDocID)
	assert.Equal(t, remessa.AccessKey, doc.ReferencedAccessKey)
	assert.Equal(t, "1909", doc.CFOP, "mesma UF → CFOP de retorno intraestadual")
	require.NotNil(t, w.gw.lastPayload)
	assert.Equal(t, remessa.AccessKey, w.gw.lastPayload.ReferencedAccessKey)
}

func TestEmitReturn_SemRemessaAutorizada(t *testing.T) {
	w := newWorld()

	_, err := w.orch.EmitReturn(context.Background(), "tenant-1", "loc-1", nil)
	assert.ErrorIs(t, err, domain.ErrReferenceNotAuthorized)
	assert.Equal(t, 0, w.gw.submitCalls)
}

func TestEmitReturn_RetornoAtivoDuplicadoRejeitado(t *testing.T) {
	w := newWorld()
	remessa := w.seedAuthorizedOutbound()
	w.docs.docs["doc-retorno"] = &entity.FiscalDocument{
		ID: "doc-retorno", TenantID: "tenant-1", BookingID: "loc-1",
		MovementType: entity.MovementReturn, Status: entity.StatusProcessing,
		ReferencedDocID: remessa.ID,
	}

	_, err := w.orch.EmitReturn(context.Background(), "tenant-1", "loc-1", nil)
	var inv *domain.InvariantViolationError
	require.ErrorAs(t, err, &inv)
}

// ──────────────────────────────────────────────────────────────────────────────
// Subconjunto de equipamentos (emissão/retorno parcial)
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitReturn_ParcialPorEquipamento(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	doc, err := w.orch.EmitReturn(context.Background(), "tenant-1", "loc-1", []string{"eq-1"})
	require.NoError(t, err)

	items, _ := w.docs.GetItems(context.Background(), doc.ID)
	require.Len(t, items, 1, "só o equipamento pedido entra no retorno")
	assert.Equal(t, "eq-1", items[0].EquipmentID)
	// 2×500 do andaime; a betoneira fica de fora.
	assert.True(t, doc.TotalValue.Equal(decimal.NewFromInt(1000)),
		"esperado 1000, obtido %s", doc.TotalValue)
}

func TestEmit_EquipamentoForaDaLocacaoRejeitado(t *testing.T) {
	w := newWorld()

	_, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", []string{"eq-1", "eq-99"})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "equipment_ids", vErr.Field)
	assert.Equal(t, 0, w.gw.submitCalls, "seleção inválida nunca chega ao gateway")
}

// ──────────────────────────────────────────────────────────────────────────────
// Falha de envio: documento vira ERROR, nunca desaparece
// ──────────────────────────────────────────────────────────────────────────────

func TestEmit_FalhaDeRedePreservaDocumentoComoError(t *testing.T) {
	w := newWorld()
	w.gw.submitResp = nil
	w.gw.submitErr = &domain.GatewayError{Message: "falha de rede: connection refused"}

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.Error(t, err)
	require.NotNil(t, doc, "o documento criado é devolvido mesmo com falha no envio")

	stored, gerr := w.docs.GetByID(context.Background(), doc.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.StatusError, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "connection refused")
}

func TestEmit_AutorizacaoImediataNaResposta(t *testing.T) {
	w := newWorld()
	w.gw.submitResp = &gateway.Response{
		Status:    "autorizado",
		Number:    "321",
		Series:    "1",
		AccessKey: "35260512345678000195550010000003211000003219",
		XMLPath:   "/notas/nfe-321.xml",
		PDFPath:   "/notas/danfe-321.pdf",
	}

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAuthorized, doc.Status,
		"resposta síncrona já autorizada dispensa o sync")
	assert.Equal(t, "321", doc.Number)
	assert.Equal(t, "35260512345678000195550010000003211000003219", doc.AccessKey)
	assert.Equal(t, "/notas/nfe-321.xml", doc.XMLURL)
	require.NotNil(t, doc.AuthorizedAt)
	assert.Equal(t, w.now, *doc.AuthorizedAt)
}

func TestEmit_RespostaImediataDeErroDeAutorizacao(t *testing.T) {
	w := newWorld()
	w.gw.submitResp = &gateway.Response{
		Status:       "erro_autorizacao",
		StatusReason: "Rejeição 539: CNPJ do destinatário inválido",
	}

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, doc.Status)
	assert.Equal(t, "erro_autorizacao", doc.GatewayStatus)
	assert.Contains(t, doc.ErrorMessage, "Rejeição 539")
}

// Valor declarado: linha sem valor na reserva cai no valor de reposição.
func TestEmit_ValorDeclaradoFallbackReposicao(t *testing.T) {
	w := newWorld()
	w.bookings.booking.Items[1].UnitValue = decimal.Zero

	doc, err := w.orch.EmitOutbound(context.Background(), "tenant-1", "loc-1", nil)
	require.NoError(t, err)
	// 2×500 + 1×300 (reposição da betoneira) = 1300
	assert.True(t, doc.TotalValue.Equal(decimal.NewFromInt(1300)),
		"esperado 1300, obtido %s", doc.TotalValue)
}
