package fiscal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
)

const justificativaValida = "equipamento devolvido antes da retirada do canteiro"

func TestCancel_FluxoFeliz(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()
	w.gw.cancelResp = &gateway.Response{Status: "cancelado", Protocol: "135230000000099"}

	doc, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", justificativaValida)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCancelled, doc.Status)
	assert.Equal(t, "135230000000099", doc.CancelProtocol)
	assert.Equal(t, justificativaValida, doc.CancelReason)
	require.NotNil(t, doc.CancelledAt)
	assert.Equal(t, w.now, *doc.CancelledAt)
	assert.Equal(t, 1, w.gw.cancelCalls)
}

func TestCancel_JustificativaCurtaNaoChegaAoGateway(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	_, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", "muito curta")
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "justificativa", vErr.Field)
	assert.Equal(t, 0, w.gw.cancelCalls, "a validação local precede qualquer chamada de rede")
}

func TestCancel_JustificativaContaRunasNaoBytes(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	// 14 runas com acentos (mais de 15 bytes em UTF-8): ainda é curta.
	_, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", "áéíóúâêôãõçàüñ")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCancel_SomenteAutorizado(t *testing.T) {
	w := newWorld()
	doc := w.seedAuthorizedOutbound()

	for _, status := range []entity.DocumentStatus{
		entity.StatusPending, entity.StatusProcessing, entity.StatusRejected,
		entity.StatusCancelled, entity.StatusDenied, entity.StatusError,
	} {
		doc.Status = status
		_, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", justificativaValida)
		assert.ErrorIs(t, err, domain.ErrDocumentNotCancellable, "status %s", status)
	}
	assert.Equal(t, 0, w.gw.cancelCalls)
}

func TestCancel_DocumentoDeOutroTenant(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	_, err := w.orch.Cancel(context.Background(), "tenant-2", "doc-remessa", justificativaValida)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCancel_FalhaDoGatewayMantemAutorizado(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()
	w.gw.cancelErr = &domain.GatewayError{StatusCode: 502, Message: "bad gateway"}

	_, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", justificativaValida)
	require.Error(t, err)

	stored, _ := w.docs.GetByID(context.Background(), "doc-remessa")
	assert.Equal(t, entity.StatusAuthorized, stored.Status,
		"cancelamento que falhou no gateway não altera o documento")
}

func TestCancel_RespostaSemStatusCanceladoMantemAutorizado(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()
	// Resposta 2xx sem o status "cancelado" (só o protocolo): o cancelamento
	// não está confirmado e o documento não pode sair de AUTHORIZED.
	w.gw.cancelResp = &gateway.Response{Protocol: "135230000000099"}

	_, err := w.orch.Cancel(context.Background(), "tenant-1", "doc-remessa", justificativaValida)
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)

	stored, _ := w.docs.GetByID(context.Background(), "doc-remessa")
	assert.Equal(t, entity.StatusAuthorized, stored.Status)
	assert.Empty(t, stored.CancelProtocol)
	assert.Nil(t, stored.CancelledAt)
	assert.Equal(t, 0, w.docs.updates, "nada é persistido sem confirmação do gateway")
}

func TestCorrectionLetter_FluxoFeliz(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	doc, err := w.orch.CorrectionLetter(context.Background(), "tenant-1", "doc-remessa",
		"endereço de entrega corrigido para Rua das Obras, 55")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAuthorized, doc.Status, "carta de correção não muda o status")
	assert.Equal(t, 1, w.gw.correctCalls)
}

func TestCorrectionLetter_TextoCurtoRejeitado(t *testing.T) {
	w := newWorld()
	w.seedAuthorizedOutbound()

	_, err := w.orch.CorrectionLetter(context.Background(), "tenant-1", "doc-remessa", "curto")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, w.gw.correctCalls)
}

func TestCorrectionLetter_ExigeAutorizado(t *testing.T) {
	w := newWorld()
	doc := w.seedAuthorizedOutbound()
	doc.Status = entity.StatusProcessing

	_, err := w.orch.CorrectionLetter(context.Background(), "tenant-1", "doc-remessa",
		"endereço de entrega corrigido para Rua das Obras, 55")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}
