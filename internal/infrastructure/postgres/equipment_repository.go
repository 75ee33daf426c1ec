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

var _ repository.EquipmentRepository = (*EquipmentRepo)(nil)

// EquipmentRepo leitura do cadastro de equipamentos.
type EquipmentRepo struct {
	q Querier
}

// NewEquipmentRepository constrói o adaptador somente-leitura.
func NewEquipmentRepository(q Querier) *EquipmentRepo {
	return &EquipmentRepo{q: q}
}

// GetByID obtém o equipamento. ErrNotFound quando não existe.
func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (*entity.Equipment, error) {
	query := `
		SELECT id, tenant_id, code, name, COALESCE(ncm, ''), replacement_value
		FROM equipments WHERE id = $1`
	var e entity.Equipment
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.TenantID, &e.Code, &e.Name, &e.NCM, &e.ReplacementValue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return &e, nil
}
