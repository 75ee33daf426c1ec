package fiscal

import (
	"context"
	"time"

	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/internal/infrastructure/cert"
)

// UploadCertificate valida e armazena o certificado A1 do tenant. A senha
// transita apenas em memória: é cifrada pela guarda antes de persistir e não
// aparece em nenhum log.
func (o *Orchestrator) UploadCertificate(ctx context.Context, tenantID string, container []byte, passphrase string) (*cert.Status, error) {
	c, err := o.certs.Save(ctx, tenantID, container, passphrase)
	if err != nil {
		return nil, err
	}
	expiresAt := c.NotAfter
	days, _ := cert.EvaluateExpiry(expiresAt, o.now())
	return &cert.Status{
		HasCertificate: true,
		ExpiresAt:      &expiresAt,
		DaysRemaining:  days,
	}, nil
}

// CertificateStatus informa a situação do certificado do tenant.
func (o *Orchestrator) CertificateStatus(ctx context.Context, tenantID string) (*cert.Status, error) {
	return o.certs.Status(ctx, tenantID)
}

// RemoveCertificate apaga o certificado do tenant. Idempotente.
func (o *Orchestrator) RemoveCertificate(ctx context.Context, tenantID string) error {
	return o.certs.Remove(ctx, tenantID)
}

// CertificatesExpiringSoon varre os certificados vencendo dentro da janela,
// para alimentar alertas operacionais.
func (o *Orchestrator) CertificatesExpiringSoon(ctx context.Context, within time.Duration) ([]repository.CertificateExpiry, error) {
	return o.certs.ListExpiringSoon(ctx, within)
}
