// Guarda de certificados digitais A1 por tenant.
//
// A senha do container nunca é registrada em log nem persistida em claro:
// entra, é validada contra o container e sai criptografada para o banco.

package cert

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/repository"
	"github.com/locagora/fiscal-api/pkg/logger"
)

// Encryptor é a porta de criptografia em repouso usada pela guarda.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encoded string) (string, error)
}

// Status resume a situação do certificado de um tenant sem expor material
// sensível.
type Status struct {
	HasCertificate bool       `json:"has_certificate"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	DaysRemaining  int        `json:"days_remaining"`
	Expired        bool       `json:"expired"`
}

// Store valida, armazena e recupera certificados A1.
type Store struct {
	profiles repository.TenantProfileRepository
	enc      Encryptor
	log      *logger.Logger
	now      func() time.Time
}

// NewStore cria a guarda de certificados.
func NewStore(profiles repository.TenantProfileRepository, enc Encryptor, log *logger.Logger) *Store {
	return &Store{profiles: profiles, enc: enc, log: log, now: time.Now}
}

// EvaluateExpiry avalia a validade temporal de forma pura (testável sem
// container real). Devolve os dias restantes, ou CertificateError com
// DaysOverdue quando já vencido. Vencimentos parciais contam como dia cheio.
func EvaluateExpiry(notAfter, now time.Time) (int, error) {
	if now.After(notAfter) {
		overdue := int(math.Ceil(now.Sub(notAfter).Hours() / 24))
		if overdue < 1 {
			overdue = 1
		}
		return 0, domain.NewCertificateError(domain.CertReasonExpired, overdue, nil)
	}
	return int(notAfter.Sub(now).Hours() / 24), nil
}

// Validate decodifica o container e confere a validade temporal, sem
// persistir nada. É a operação por trás do "testar certificado" da UI.
func (s *Store) Validate(container []byte, passphrase string) (*Certificate, error) {
	cert, err := ParseContainer(container, passphrase)
	if err != nil {
		return nil, err
	}
	if _, err := EvaluateExpiry(cert.NotAfter, s.now()); err != nil {
		return nil, err
	}
	return cert, nil
}

// Save valida e persiste o container de um tenant. A senha é criptografada
// antes de tocar o repositório; o material bruto do container é gravado como
// chegou (ele próprio é protegido pela senha).
func (s *Store) Save(ctx context.Context, tenantID string, container []byte, passphrase string) (*Certificate, error) {
	cert, err := s.Validate(container, passphrase)
	if err != nil {
		s.log.Warn().Str("tenant_id", tenantID).Err(err).Msg("certificado rejeitado na validação")
		return nil, err
	}

	sealed, err := s.enc.Encrypt(passphrase)
	if err != nil {
		return nil, fmt.Errorf("criptografar senha do certificado: %w", err)
	}

	if err := s.profiles.UpdateCertificate(ctx, tenantID, container, sealed, cert.NotAfter); err != nil {
		return nil, fmt.Errorf("persistir certificado: %w", err)
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Time("expires_at", cert.NotAfter).
		Str("cert_tax_id", cert.TaxID).
		Msg("certificado digital armazenado")
	return cert, nil
}

// Status informa a situação do certificado armazenado. Tenant sem certificado
// não é erro: devolve HasCertificate=false.
func (s *Store) Status(ctx context.Context, tenantID string) (*Status, error) {
	profile, err := s.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !profile.HasCertificate() || profile.CertificateExpiresAt == nil {
		return &Status{}, nil
	}

	st := &Status{HasCertificate: true, ExpiresAt: profile.CertificateExpiresAt}
	days, err := EvaluateExpiry(*profile.CertificateExpiresAt, s.now())
	if err != nil {
		var certErr *domain.CertificateError
		if errors.As(err, &certErr) {
			st.Expired = true
			st.DaysRemaining = -certErr.DaysOverdue
			return st, nil
		}
		return nil, err
	}
	st.DaysRemaining = days
	return st, nil
}

// RetrieveForSigning recupera o certificado decodificado para uso imediato
// (assinatura de XML). A validade é reavaliada na hora: certificado vencido
// entre o upload e o uso é recusado aqui.
func (s *Store) RetrieveForSigning(ctx context.Context, tenantID string) (*Certificate, error) {
	profile, err := s.profiles.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !profile.HasCertificate() {
		return nil, domain.ErrCertificateMissing
	}

	passphrase, err := s.enc.Decrypt(profile.CertificatePassword)
	if err != nil {
		return nil, fmt.Errorf("decifrar senha do certificado: %w", err)
	}

	cert, err := ParseContainer(profile.CertificateFile, passphrase)
	if err != nil {
		return nil, err
	}
	if _, err := EvaluateExpiry(cert.NotAfter, s.now()); err != nil {
		return nil, err
	}
	return cert, nil
}

// Remove apaga container, senha e validade do tenant. Idempotente.
func (s *Store) Remove(ctx context.Context, tenantID string) error {
	if err := s.profiles.ClearCertificate(ctx, tenantID); err != nil {
		return err
	}
	s.log.Info().Str("tenant_id", tenantID).Msg("certificado digital removido")
	return nil
}

// ListExpiringSoon varre os certificados que vencem dentro da janela dada
// (inclui os já vencidos), para alimentar notificações externas. Cada linha
// sai com os dias restantes calculados (negativos para vencidos).
func (s *Store) ListExpiringSoon(ctx context.Context, within time.Duration) ([]repository.CertificateExpiry, error) {
	now := s.now()
	rows, err := s.profiles.ListCertificatesExpiringBefore(ctx, now.Add(within))
	if err != nil {
		return nil, err
	}
	for i := range rows {
		days, err := EvaluateExpiry(rows[i].ExpiresAt, now)
		if err != nil {
			var certErr *domain.CertificateError
			if errors.As(err, &certErr) {
				rows[i].DaysRemaining = -certErr.DaysOverdue
				continue
			}
			return nil, err
		}
		rows[i].DaysRemaining = days
	}
	return rows, nil
}
