package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo leitura do cadastro de clientes.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository constrói o adaptador somente-leitura.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtém o cliente. ErrNotFound quando não existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `
		SELECT id, tenant_id, name, tax_id,
		       COALESCE(state_registration, ''), is_state_reg_exempt,
		       street, number, district, city, COALESCE(city_code, ''), state, zip_code,
		       COALESCE(email, ''), COALESCE(phone, ''), created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.TaxID,
		&c.StateRegistration, &c.IsStateRegExempt,
		&c.Address.Street, &c.Address.Number, &c.Address.District,
		&c.Address.City, &c.Address.CityCode, &c.Address.State, &c.Address.ZipCode,
		&c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
