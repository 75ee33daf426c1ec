package repository

import (
	"context"
	"time"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// CertificateExpiry é a linha da varredura de certificados a vencer,
// consumida pelo notificador externo.
type CertificateExpiry struct {
	TenantID  string
	ExpiresAt time.Time
	// DaysRemaining é calculado pela guarda de certificados (negativo quando
	// já vencido); o repositório devolve apenas tenant e data.
	DaysRemaining int
}

// TenantProfileRepository define a porta de leitura/escrita do perfil fiscal.
// O orquestrador só lê; as escritas de certificado vêm do Certificate Store.
type TenantProfileRepository interface {
	GetByTenantID(ctx context.Context, tenantID string) (*entity.TenantFiscalProfile, error)
	// UpdateCertificate grava container bruto, senha JÁ criptografada e validade.
	UpdateCertificate(ctx context.Context, tenantID string, container []byte, encryptedPassword string, expiresAt time.Time) error
	// ClearCertificate remove container, senha e validade. Idempotente.
	ClearCertificate(ctx context.Context, tenantID string) error
	// ListCertificatesExpiringBefore retorna os tenants cujo certificado vence
	// antes do limite informado (inclui os já vencidos).
	ListCertificatesExpiringBefore(ctx context.Context, limit time.Time) ([]CertificateExpiry, error)
}
