package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrForbidden    = errors.New("acesso negado")
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrDocumentNotCancellable indica tentativa de cancelar documento fora de AUTHORIZED.
	ErrDocumentNotCancellable = errors.New("somente documentos autorizados podem ser cancelados")
	// ErrReferenceNotAuthorized indica retorno contra remessa ainda não autorizada.
	ErrReferenceNotAuthorized = errors.New("a remessa referenciada precisa estar autorizada e possuir chave de acesso")
	// ErrBookingNotEligible indica locação fora dos estados que permitem emissão.
	ErrBookingNotEligible = errors.New("a locação precisa estar confirmada ou concluída para emitir documento fiscal")
	// ErrCertificateMissing indica tenant sem certificado armazenado.
	ErrCertificateMissing = errors.New("nenhum certificado digital armazenado para o tenant")
)

// ConfigurationError agrega TODAS as pendências de configuração do tenant,
// para que o operador corrija tudo de uma vez (não apenas a primeira).
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return "configuração fiscal incompleta: " + strings.Join(e.Missing, ", ")
}

// IncompleteDataError agrega os campos faltantes de emitente/destinatário/itens
// detectados pelo montador de payload. Nunca deixa documento parcial para trás.
type IncompleteDataError struct {
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return "dados insuficientes para emissão: " + strings.Join(e.Missing, ", ")
}

// InvariantViolationError sinaliza documento ativo duplicado (por locação ou
// por remessa referenciada). A verificação em aplicação é o caminho rápido;
// a garantia real é o índice único parcial do banco.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string { return e.Message }

// Motivos de falha na validação do certificado digital.
const (
	CertReasonInvalidPassphrase = "senha_invalida"
	CertReasonMalformed         = "container_invalido"
	CertReasonExpired           = "expirado"
)

// CertificateError descreve uma falha local de certificado (nunca envolve rede).
type CertificateError struct {
	Reason      string
	DaysOverdue int // > 0 somente quando Reason == CertReasonExpired
	cause       error
}

func (e *CertificateError) Error() string {
	switch e.Reason {
	case CertReasonInvalidPassphrase:
		return "certificado: senha do container incorreta"
	case CertReasonMalformed:
		return "certificado: container PKCS#12 inválido ou corrompido"
	case CertReasonExpired:
		return fmt.Sprintf("certificado: vencido há %d dia(s)", e.DaysOverdue)
	}
	return "certificado: erro de validação"
}

func (e *CertificateError) Unwrap() error { return e.cause }

// NewCertificateError cria o erro preservando a causa original para errors.Is/As.
func NewCertificateError(reason string, daysOverdue int, cause error) *CertificateError {
	return &CertificateError{Reason: reason, DaysOverdue: daysOverdue, cause: cause}
}

// GatewayError carrega a mensagem do intermediário fiscal sem reinterpretar.
// StatusCode 0 significa falha de rede/timeout (sem resposta HTTP).
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return "gateway fiscal: " + e.Message
	}
	return fmt.Sprintf("gateway fiscal (HTTP %d): %s", e.StatusCode, e.Message)
}

// ValidationError sinaliza entrada do usuário rejeitada antes de qualquer
// chamada de rede (ex.: justificativa de cancelamento curta demais).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }
