// Package nfe contém catálogos e validações do modelo NF-e usados na emissão
// de notas de movimentação de mercadoria (remessa/retorno de locação).
package nfe

// =============================================================================
// CFOP — Código Fiscal de Operações e Prestações.
// Remessa de bem por conta de contrato de locação: 5908 (dentro da UF) e
// 6908 (fora da UF). Retorno do bem: 1909 (dentro) e 2909 (fora).
// São os padrões sugeridos; cada tenant pode sobrescrever no perfil fiscal.
// =============================================================================

const (
	CFOPOutboundSameState  = "5908" // remessa de locação, mesma UF
	CFOPOutboundOtherState = "6908" // remessa de locação, UF diferente
	CFOPReturnSameState    = "1909" // retorno de locação, mesma UF
	CFOPReturnOtherState   = "2909" // retorno de locação, UF diferente
)

// =============================================================================
// CST ICMS — movimentação de bens do ativo para locação não gera incidência.
// =============================================================================

const (
	CSTNotTaxed   = "41" // não tributada
	CSTSuspension = "50" // suspensão
)

// =============================================================================
// Indicador de IE do destinatário (tag indIEDest do layout NF-e).
// =============================================================================

const (
	RegistrationIndicatorRegistered     = "1" // contribuinte ICMS (possui IE)
	RegistrationIndicatorExempt         = "2" // contribuinte isento de inscrição
	RegistrationIndicatorNonContributor = "9" // não contribuinte
)

// =============================================================================
// Tipo do documento (tag tpNF): retorno de locação entra como nota de entrada.
// =============================================================================

const (
	DocumentDirectionInbound  = "0" // entrada (retorno)
	DocumentDirectionOutbound = "1" // saída (remessa)
)

// Naturezas de operação padrão por tipo de movimento.
const (
	OperationNatureOutbound = "Remessa de bem por conta de contrato de locação"
	OperationNatureReturn   = "Retorno de bem recebido por conta de contrato de locação"
)

// ValidStates contém as 27 UFs válidas para comparação de jurisdição.
var ValidStates = map[string]bool{
	"AC": true, "AL": true, "AP": true, "AM": true, "BA": true, "CE": true,
	"DF": true, "ES": true, "GO": true, "MA": true, "MT": true, "MS": true,
	"MG": true, "PA": true, "PB": true, "PR": true, "PE": true, "PI": true,
	"RJ": true, "RN": true, "RS": true, "RO": true, "RR": true, "SC": true,
	"SP": true, "SE": true, "TO": true,
}
