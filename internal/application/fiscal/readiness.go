package fiscal

import (
	"time"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// checkReadiness verifica se o perfil fiscal do tenant está apto a emitir.
// Acumula TODAS as pendências antes de retornar, para que o operador corrija
// a configuração inteira de uma vez.
func checkReadiness(profile *entity.TenantFiscalProfile, now time.Time) error {
	var missing []string

	if !profile.FiscalEnabled {
		missing = append(missing, "emissão fiscal desabilitada para o tenant")
	}
	if profile.TaxID == "" {
		missing = append(missing, "CNPJ do emitente")
	}
	if profile.StateRegistration == "" {
		missing = append(missing, "inscrição estadual do emitente")
	}
	if profile.Address.Empty() {
		missing = append(missing, "endereço do emitente")
	}
	if profile.CFOPOutboundSameState == "" || profile.CFOPOutboundOtherState == "" ||
		profile.CFOPReturnSameState == "" || profile.CFOPReturnOtherState == "" {
		missing = append(missing, "os quatro CFOPs padrão (remessa/retorno × dentro/fora da UF)")
	}
	if profile.Environment != entity.EnvironmentSandbox && profile.Environment != entity.EnvironmentProduction {
		missing = append(missing, "ambiente do gateway (homologacao ou producao)")
	}
	if profile.GatewayToken == "" {
		missing = append(missing, "credencial do gateway fiscal")
	}
	if !profile.HasCertificate() {
		missing = append(missing, "certificado digital A1")
	} else if profile.CertificateExpiresAt.Before(now) {
		missing = append(missing, "certificado digital vencido")
	}

	if len(missing) > 0 {
		return &domain.ConfigurationError{Missing: missing}
	}
	return nil
}
