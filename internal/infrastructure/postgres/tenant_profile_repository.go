package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/repository"
)

var _ repository.TenantProfileRepository = (*TenantProfileRepo)(nil)

// TenantProfileRepo implementação de TenantProfileRepository.
type TenantProfileRepo struct {
	q Querier
}

// NewTenantProfileRepository constrói o adaptador.
func NewTenantProfileRepository(q Querier) *TenantProfileRepo {
	return &TenantProfileRepo{q: q}
}

// GetByTenantID obtém o perfil fiscal do tenant. ErrNotFound quando não existe.
func (r *TenantProfileRepo) GetByTenantID(ctx context.Context, tenantID string) (*entity.TenantFiscalProfile, error) {
	query := `
		SELECT tenant_id, corporate_name, tax_id,
		       COALESCE(state_registration, ''), COALESCE(municipal_registration, ''), tax_regime,
		       street, number, district, city, COALESCE(city_code, ''), state, zip_code,
		       cfop_outbound_same_state, cfop_outbound_other_state,
		       cfop_return_same_state, cfop_return_other_state,
		       default_tax_situation, fiscal_enabled, environment,
		       COALESCE(gateway_token, ''),
		       certificate_file, COALESCE(certificate_password, ''), certificate_expires_at,
		       created_at, updated_at
		FROM tenant_fiscal_profiles WHERE tenant_id = $1`
	var p entity.TenantFiscalProfile
	err := r.q.QueryRow(ctx, query, tenantID).Scan(
		&p.TenantID, &p.CorporateName, &p.TaxID,
		&p.StateRegistration, &p.MunicipalRegistration, &p.TaxRegime,
		&p.Address.Street, &p.Address.Number, &p.Address.District,
		&p.Address.City, &p.Address.CityCode, &p.Address.State, &p.Address.ZipCode,
		&p.CFOPOutboundSameState, &p.CFOPOutboundOtherState,
		&p.CFOPReturnSameState, &p.CFOPReturnOtherState,
		&p.DefaultTaxSituation, &p.FiscalEnabled, &p.Environment,
		&p.GatewayToken,
		&p.CertificateFile, &p.CertificatePassword, &p.CertificateExpiresAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant fiscal profile: %w", err)
	}
	return &p, nil
}

// UpdateCertificate grava container, senha criptografada e validade.
func (r *TenantProfileRepo) UpdateCertificate(ctx context.Context, tenantID string, container []byte, encryptedPassword string, expiresAt time.Time) error {
	query := `
		UPDATE tenant_fiscal_profiles
		SET certificate_file       = $2,
		    certificate_password   = $3,
		    certificate_expires_at = $4,
		    updated_at             = $5
		WHERE tenant_id = $1`
	tag, err := r.q.Exec(ctx, query, tenantID, container, encryptedPassword, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearCertificate remove container, senha e validade. Idempotente: limpar um
// perfil sem certificado não é erro.
func (r *TenantProfileRepo) ClearCertificate(ctx context.Context, tenantID string) error {
	query := `
		UPDATE tenant_fiscal_profiles
		SET certificate_file       = NULL,
		    certificate_password   = NULL,
		    certificate_expires_at = NULL,
		    updated_at             = $2
		WHERE tenant_id = $1`
	if _, err := r.q.Exec(ctx, query, tenantID, time.Now()); err != nil {
		return fmt.Errorf("clear certificate: %w", err)
	}
	return nil
}

// ListCertificatesExpiringBefore varre os certificados que vencem antes do
// limite (inclui os já vencidos), ordenados do mais urgente.
func (r *TenantProfileRepo) ListCertificatesExpiringBefore(ctx context.Context, limit time.Time) ([]repository.CertificateExpiry, error) {
	query := `
		SELECT tenant_id, certificate_expires_at
		FROM tenant_fiscal_profiles
		WHERE certificate_expires_at IS NOT NULL AND certificate_expires_at < $1
		ORDER BY certificate_expires_at`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list expiring certificates: %w", err)
	}
	defer rows.Close()
	var list []repository.CertificateExpiry
	for rows.Next() {
		var e repository.CertificateExpiry
		if err := rows.Scan(&e.TenantID, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan expiry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
