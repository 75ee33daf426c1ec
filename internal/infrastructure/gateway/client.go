// Cliente REST do intermediário fiscal.
//
// O cliente fala com a API do emissor (estilo Focus NFe): o documento é
// referenciado pela referência interna do tenant, a autenticação é o token
// da conta via Basic Auth e o status volta como string que preservamos
// verbatim para a camada de aplicação traduzir.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/nfe"
	"github.com/locagora/fiscal-api/pkg/logger"
)

// Client implementa a porta de saída para o gateway fiscal usando net/http.
type Client struct {
	httpClient    *http.Client
	productionURL string
	sandboxURL    string
	timeout       time.Duration
	log           *logger.Logger
}

// NewClient constrói o cliente com timeout explícito por chamada. Nenhuma
// chamada ao gateway fica sem deadline.
func NewClient(productionURL, sandboxURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		productionURL: productionURL,
		sandboxURL:    sandboxURL,
		timeout:       timeout,
		log:           log,
	}
}

func (c *Client) baseURL(environment string) string {
	if environment == entity.EnvironmentProduction {
		return c.productionURL
	}
	return c.sandboxURL
}

// Submit entrega o payload para emissão assíncrona, chaveado pela referência
// interna. A resposta imediata pode já trazer erro de validação do gateway.
func (c *Client) Submit(ctx context.Context, auth Auth, ref string, doc *nfe.Document) (*Response, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("gateway: serializar payload: %w", err)
	}
	url := fmt.Sprintf("%s/v2/nfe?ref=%s", c.baseURL(auth.Environment), ref)
	return c.do(ctx, auth, http.MethodPost, url, body)
}

// Query consulta a situação atual do documento pela referência interna.
func (c *Client) Query(ctx context.Context, auth Auth, ref string) (*Response, error) {
	url := fmt.Sprintf("%s/v2/nfe/%s", c.baseURL(auth.Environment), ref)
	return c.do(ctx, auth, http.MethodGet, url, nil)
}

// Cancel pede o cancelamento do documento com a justificativa informada.
// A validação de tamanho da justificativa acontece ANTES, na aplicação.
func (c *Client) Cancel(ctx context.Context, auth Auth, ref, justification string) (*Response, error) {
	body, err := json.Marshal(cancelRequest{Justification: justification})
	if err != nil {
		return nil, fmt.Errorf("gateway: serializar cancelamento: %w", err)
	}
	url := fmt.Sprintf("%s/v2/nfe/%s", c.baseURL(auth.Environment), ref)
	return c.do(ctx, auth, http.MethodDelete, url, body)
}

// Correct registra uma carta de correção para o documento autorizado.
func (c *Client) Correct(ctx context.Context, auth Auth, ref, correction string) (*Response, error) {
	body, err := json.Marshal(correctionRequest{Correction: correction})
	if err != nil {
		return nil, fmt.Errorf("gateway: serializar carta de correção: %w", err)
	}
	url := fmt.Sprintf("%s/v2/nfe/%s/carta_correcao", c.baseURL(auth.Environment), ref)
	return c.do(ctx, auth, http.MethodPost, url, body)
}

// do executa a chamada HTTP com deadline, classifica falhas de transporte
// como GatewayError de StatusCode 0 e respostas não-2xx como GatewayError
// com o código HTTP. O corpo é limitado a 1 MB.
func (c *Client) do(ctx context.Context, auth Auth, method, url string, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("gateway: criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// O token da conta entra como usuário do Basic Auth, senha vazia.
	req.SetBasicAuth(auth.Token, "")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.GatewayError{Message: "timeout ou cancelamento: " + ctx.Err().Error()}
		}
		return nil, &domain.GatewayError{Message: "falha de rede: " + err.Error()}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // máx 1 MB
	if err != nil {
		return nil, &domain.GatewayError{Message: "ler resposta: " + err.Error()}
	}

	c.log.Debug().
		Str("method", method).
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("chamada ao gateway fiscal")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(rawBody),
		}
	}

	var out Response
	if err := json.Unmarshal(rawBody, &out); err != nil {
		// Resposta 2xx ilegível: não abortamos o fluxo com pânico, devolvemos
		// o corpo cru como mensagem para o chamador decidir.
		return nil, &domain.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    "resposta ilegível do gateway: " + truncate(string(rawBody), 512),
		}
	}
	return &out, nil
}

// extractErrorMessage tenta o formato {"codigo","mensagem"}; se não der,
// devolve o corpo cru truncado.
func extractErrorMessage(rawBody []byte) string {
	var eb errorBody
	if err := json.Unmarshal(rawBody, &eb); err == nil && eb.Message != "" {
		if eb.Code != "" {
			return eb.Code + ": " + eb.Message
		}
		return eb.Message
	}
	return truncate(string(rawBody), 512)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
