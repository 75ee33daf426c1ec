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

var _ repository.BookingRepository = (*BookingRepo)(nil)

// BookingRepo leitura das locações do subsistema de reservas. O motor fiscal
// nunca escreve nessas tabelas.
type BookingRepo struct {
	q Querier
}

// NewBookingRepository constrói o adaptador somente-leitura.
func NewBookingRepository(q Querier) *BookingRepo {
	return &BookingRepo{q: q}
}

// GetByID obtém a locação com suas linhas. ErrNotFound quando não existe.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*entity.Booking, error) {
	query := `
		SELECT id, tenant_id, customer_id, status, starts_at, ends_at
		FROM bookings WHERE id = $1`
	var b entity.Booking
	err := r.q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.TenantID, &b.CustomerID, &b.Status, &b.StartsAt, &b.EndsAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	itemsQuery := `
		SELECT equipment_id, quantity, declared_unit_value
		FROM booking_items WHERE booking_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list booking items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.BookingItem
		if err := rows.Scan(&it.EquipmentID, &it.Quantity, &it.UnitValue); err != nil {
			return nil, fmt.Errorf("scan booking item: %w", err)
		}
		b.Items = append(b.Items, it)
	}
	return &b, rows.Err()
}
