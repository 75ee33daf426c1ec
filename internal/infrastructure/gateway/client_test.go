package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/nfe"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
	"github.com/locagora/fiscal-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func TestSubmit_EnviaReferenciaETokem(t *testing.T) {
	var gotRef, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRef = r.URL.Query().Get("ref")
		gotUser, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "processando_autorizacao"})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, srv.URL, 5*time.Second, testLogger())
	resp, err := client.Submit(context.Background(),
		gateway.Auth{Token: "tok-123", Environment: "homologacao"}, "doc-ref-1", &nfe.Document{})
	require.NoError(t, err)

	assert.Equal(t, "doc-ref-1", gotRef)
	assert.Equal(t, "tok-123", gotUser, "o token entra como usuário do Basic Auth")
	assert.Equal(t, "processando_autorizacao", resp.Status, "o status do gateway é preservado verbatim")
}

func TestQuery_StatusPreservadoVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "autorizado",
			"chave_nfe": "35230612345678000195550010000001231000001234",
			"numero":    "123",
			"serie":     "1",
			"protocolo": "135230000000001",
		})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, srv.URL, 5*time.Second, testLogger())
	resp, err := client.Query(context.Background(),
		gateway.Auth{Token: "tok", Environment: "producao"}, "doc-ref-1")
	require.NoError(t, err)

	assert.Equal(t, "autorizado", resp.Status)
	assert.Equal(t, "35230612345678000195550010000001231000001234", resp.AccessKey)
	assert.Equal(t, "135230000000001", resp.Protocol)
}

func TestDo_ErroHTTPViraGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"codigo": "permissao_negada", "mensagem": "token inválido",
		})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, srv.URL, 5*time.Second, testLogger())
	_, err := client.Query(context.Background(),
		gateway.Auth{Token: "tok", Environment: "producao"}, "doc-ref-1")
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusForbidden, gwErr.StatusCode)
	assert.Contains(t, gwErr.Message, "token inválido")
}

func TestDo_FalhaDeRedeTemStatusCodeZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // servidor já fechado: conexão recusada

	client := gateway.NewClient(srv.URL, srv.URL, 1*time.Second, testLogger())
	_, err := client.Query(context.Background(),
		gateway.Auth{Token: "tok", Environment: "producao"}, "doc-ref-1")
	require.Error(t, err)

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, 0, gwErr.StatusCode)
}

func TestCancel_EnviaJustificativa(t *testing.T) {
	var gotMethod string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "cancelado"})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, srv.URL, 5*time.Second, testLogger())
	resp, err := client.Cancel(context.Background(),
		gateway.Auth{Token: "tok", Environment: "producao"}, "doc-ref-1",
		"equipamento devolvido antes da retirada do canteiro")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "equipamento devolvido antes da retirada do canteiro", gotBody["justificativa"])
	assert.Equal(t, "cancelado", resp.Status)
}

func TestCorrect_UsaEndpointDeCarta(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "autorizado"})
	}))
	defer srv.Close()

	client := gateway.NewClient(srv.URL, srv.URL, 5*time.Second, testLogger())
	_, err := client.Correct(context.Background(),
		gateway.Auth{Token: "tok", Environment: "producao"}, "doc-ref-1",
		"endereço de entrega corrigido para Rua das Obras, 55")
	require.NoError(t, err)
	assert.Equal(t, "/v2/nfe/doc-ref-1/carta_correcao", gotPath)
}
