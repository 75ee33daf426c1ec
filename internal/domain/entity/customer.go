package entity

import "time"

// Customer é a visão somente-leitura do destinatário (cadastro do cliente).
// Na emissão o orquestrador copia os campos fiscais para o snapshot do
// documento; o cadastro pode mudar depois sem afetar documentos emitidos.
type Customer struct {
	ID       string
	TenantID string
	Name     string
	TaxID    string // CNPJ ou CPF
	// Inscrição estadual. Vazia + IsStateRegExempt=false → não contribuinte.
	StateRegistration string
	IsStateRegExempt  bool
	Address           Address
	Email             string
	Phone             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
