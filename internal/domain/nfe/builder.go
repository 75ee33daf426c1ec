package nfe

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/locagora/fiscal-api/internal/domain"
	"github.com/locagora/fiscal-api/internal/domain/entity"
	pkgnfe "github.com/locagora/fiscal-api/pkg/nfe"
)

// Build monta o payload do documento a partir do tipo de movimento, emitente,
// destinatário, itens e configuração tributária do tenant.
//
// Regra central: o CFOP sai de uma tabela 2×2 (tipo de movimento × mesma
// UF/UF diferente), nunca de uma constante única. Para retorno, a chave de
// acesso da remessa referenciada é anexada ao payload e citada nas
// informações adicionais.
func Build(
	movement entity.MovementType,
	issuer Issuer,
	counterparty Counterparty,
	items []LineItem,
	cfg TaxConfig,
	bookingRef string,
	referencedAccessKey string,
) (*Document, error) {
	if err := validate(issuer, counterparty, items); err != nil {
		return nil, err
	}

	cfop := selectCFOP(movement, issuer.Address.State, counterparty.Address.State, cfg)

	taxSituation := cfg.DefaultTaxSituation
	if taxSituation == "" {
		taxSituation = pkgnfe.CSTNotTaxed
	}

	doc := &Document{
		OperationNature: operationNature(movement),
		Direction:       direction(movement),
		CFOP:            cfop,

		IssuerTaxID:             pkgnfe.NormalizeTaxID(issuer.TaxID),
		IssuerName:              issuer.CorporateName,
		IssuerStateRegistration: issuer.StateRegistration,

		CounterpartyName:              counterparty.Name,
		CounterpartyTaxID:             pkgnfe.NormalizeTaxID(counterparty.TaxID),
		CounterpartyStateRegistration: counterparty.StateRegistration,
		RegistrationIndicator:         registrationIndicator(counterparty),

		CounterpartyStreet:   counterparty.Address.Street,
		CounterpartyNumber:   counterparty.Address.Number,
		CounterpartyDistrict: counterparty.Address.District,
		CounterpartyCity:     counterparty.Address.City,
		CounterpartyState:    strings.ToUpper(counterparty.Address.State),
		CounterpartyZipCode:  counterparty.Address.ZipCode,
	}

	gross := decimal.Zero
	for i, item := range items {
		lineTotal := item.UnitValue.Mul(item.Quantity)
		gross = gross.Add(lineTotal)
		doc.Lines = append(doc.Lines, DocumentLine{
			Sequence:     i + 1,
			ProductCode:  item.ProductCode,
			Description:  item.Description,
			NCM:          item.NCM,
			CFOP:         cfop,
			TaxSituation: taxSituation,
			Quantity:     item.Quantity,
			UnitValue:    item.UnitValue,
			TotalValue:   lineTotal,
		})
	}

	// Sem descontos nem frete nesta camada: nota de movimentação de
	// mercadoria carrega apenas o valor declarado dos bens.
	doc.GrossValue = gross
	doc.TotalValue = gross

	info := "Locação " + bookingRef + ". Movimentação de bens sem incidência de ICMS."
	if movement == entity.MovementReturn {
		doc.ReferencedAccessKey = referencedAccessKey
		info += " Retorno referente à NF-e de remessa, chave de acesso " + referencedAccessKey + "."
	}
	doc.AdditionalInfo = info

	return doc, nil
}

// validate acumula TODOS os campos faltantes antes de retornar, para que o
// chamador veja a lista completa de pendências em uma única passada.
func validate(issuer Issuer, counterparty Counterparty, items []LineItem) error {
	var missing []string
	if issuer.TaxID == "" {
		missing = append(missing, "emitente: CNPJ")
	}
	if issuer.StateRegistration == "" {
		missing = append(missing, "emitente: inscrição estadual")
	}
	if issuer.Address.Empty() {
		missing = append(missing, "emitente: endereço completo")
	}
	if counterparty.TaxID == "" {
		missing = append(missing, "destinatário: CPF/CNPJ")
	}
	if counterparty.Address.Empty() {
		missing = append(missing, "destinatário: endereço completo")
	}
	if len(items) == 0 {
		missing = append(missing, "itens: nenhum equipamento informado")
	}
	for i, item := range items {
		if item.NCM == "" {
			missing = append(missing, fmt.Sprintf("item %d (%s): classificação fiscal NCM", i+1, item.Description))
		}
		if !item.Quantity.IsPositive() {
			missing = append(missing, fmt.Sprintf("item %d (%s): quantidade deve ser positiva", i+1, item.Description))
		}
	}
	if len(missing) > 0 {
		return &domain.IncompleteDataError{Missing: missing}
	}
	return nil
}

// selectCFOP aplica a tabela 2×2: movimento × comparação de UF.
func selectCFOP(movement entity.MovementType, issuerState, counterpartyState string, cfg TaxConfig) string {
	sameState := strings.EqualFold(strings.TrimSpace(issuerState), strings.TrimSpace(counterpartyState))
	if movement == entity.MovementReturn {
		if sameState {
			return cfg.CFOPReturnSameState
		}
		return cfg.CFOPReturnOtherState
	}
	if sameState {
		return cfg.CFOPOutboundSameState
	}
	return cfg.CFOPOutboundOtherState
}

func operationNature(movement entity.MovementType) string {
	if movement == entity.MovementReturn {
		return pkgnfe.OperationNatureReturn
	}
	return pkgnfe.OperationNatureOutbound
}

func direction(movement entity.MovementType) string {
	if movement == entity.MovementReturn {
		return pkgnfe.DocumentDirectionInbound
	}
	return pkgnfe.DocumentDirectionOutbound
}

// registrationIndicator classifica o destinatário: com IE → contribuinte;
// isento declarado → isento; caso contrário → não contribuinte.
func registrationIndicator(c Counterparty) string {
	if c.StateRegistration != "" {
		return pkgnfe.RegistrationIndicatorRegistered
	}
	if c.IsStateRegExempt {
		return pkgnfe.RegistrationIndicatorExempt
	}
	return pkgnfe.RegistrationIndicatorNonContributor
}
