package repository

import (
	"context"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// BookingRepository é a porta somente-leitura do subsistema de reservas.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
}

// CustomerRepository é a porta somente-leitura do cadastro de clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}

// EquipmentRepository é a porta somente-leitura do cadastro de equipamentos.
type EquipmentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Equipment, error)
}
