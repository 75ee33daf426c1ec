package entity

import "github.com/shopspring/decimal"

// Equipment é a visão somente-leitura do equipamento locável.
type Equipment struct {
	ID       string
	TenantID string
	Code     string // código interno/SKU
	Name     string
	NCM      string // classificação fiscal; obrigatória para emissão
	// Valor de reposição: base do valor declarado quando a reserva não traz um.
	ReplacementValue decimal.Decimal
}
