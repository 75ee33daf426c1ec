package entity

import "time"

// Ambientes do gateway fiscal.
const (
	EnvironmentSandbox    = "homologacao"
	EnvironmentProduction = "producao"
)

// TenantFiscalProfile é a configuração fiscal por tenant. O orquestrador a lê
// como snapshot imutável a cada operação; somente o módulo de configuração
// (colaborador externo) a altera.
type TenantFiscalProfile struct {
	TenantID string

	CorporateName         string
	TaxID                 string // CNPJ do emitente
	StateRegistration     string // inscrição estadual
	MunicipalRegistration string
	TaxRegime             string // ex.: simples_nacional, lucro_presumido
	Address               Address

	// CFOPs padrão para as quatro combinações direção × jurisdição.
	CFOPOutboundSameState  string
	CFOPOutboundOtherState string
	CFOPReturnSameState    string
	CFOPReturnOtherState   string

	// Código de situação tributária padrão (locação: ICMS não tributado).
	DefaultTaxSituation string

	FiscalEnabled bool   // feature flag de emissão
	Environment   string // homologacao | producao

	GatewayToken string // credencial do gateway, criptografada em repouso

	// Certificado digital: container bruto + senha criptografada + validade.
	CertificateFile      []byte
	CertificatePassword  string // criptografada; nunca persistida em claro
	CertificateExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCertificate informa se há um container armazenado.
func (p *TenantFiscalProfile) HasCertificate() bool {
	return len(p.CertificateFile) > 0 && p.CertificateExpiresAt != nil
}
