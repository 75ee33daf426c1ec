package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de locação que habilitam emissão de documento fiscal.
const (
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
)

// Booking é a visão somente-leitura da locação fornecida pelo subsistema de
// reservas (colaborador externo). O motor fiscal nunca a altera.
type Booking struct {
	ID         string
	TenantID   string
	CustomerID string
	Status     string // draft, confirmed, completed, cancelled
	StartsAt   time.Time
	EndsAt     time.Time
	Items      []BookingItem
}

// BookingItem é uma linha de equipamento reservado.
type BookingItem struct {
	EquipmentID string
	Quantity    decimal.Decimal
	UnitValue   decimal.Decimal // valor declarado do bem para fins fiscais
}

// Eligible informa se o estado da locação permite emissão.
func (b *Booking) Eligible() bool {
	return b.Status == BookingConfirmed || b.Status == BookingCompleted
}
