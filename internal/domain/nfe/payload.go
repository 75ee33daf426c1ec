// Package nfe monta o payload pronto-para-gateway de uma nota de movimentação
// de mercadoria. O montador é uma função pura: sem I/O, determinística para as
// mesmas entradas — é isso que o torna testável de forma isolada.
package nfe

import (
	"github.com/shopspring/decimal"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// Issuer são os dados do emitente, extraídos do perfil fiscal do tenant.
type Issuer struct {
	CorporateName     string
	TaxID             string
	StateRegistration string
	TaxRegime         string
	Address           entity.Address
}

// Counterparty são os dados do destinatário no momento da emissão.
type Counterparty struct {
	Name              string
	TaxID             string
	StateRegistration string
	IsStateRegExempt  bool
	Address           entity.Address
}

// LineItem é uma linha de equipamento a emitir.
type LineItem struct {
	EquipmentID string
	ProductCode string
	Description string
	NCM         string
	Quantity    decimal.Decimal
	UnitValue   decimal.Decimal
}

// TaxConfig são os códigos tributários padrão do tenant.
type TaxConfig struct {
	CFOPOutboundSameState  string
	CFOPOutboundOtherState string
	CFOPReturnSameState    string
	CFOPReturnOtherState   string
	DefaultTaxSituation    string
}

// Document é a estrutura plana aceita pelo gateway fiscal.
type Document struct {
	OperationNature string `json:"natureza_operacao"`
	Direction       string `json:"tipo_documento"` // 0 = entrada, 1 = saída
	CFOP            string `json:"cfop"`

	IssuerTaxID             string `json:"cnpj_emitente"`
	IssuerName              string `json:"razao_social_emitente"`
	IssuerStateRegistration string `json:"inscricao_estadual_emitente"`

	CounterpartyName              string `json:"nome_destinatario"`
	CounterpartyTaxID             string `json:"cpf_cnpj_destinatario"`
	CounterpartyStateRegistration string `json:"inscricao_estadual_destinatario,omitempty"`
	RegistrationIndicator         string `json:"indicador_inscricao_estadual_destinatario"`

	CounterpartyStreet   string `json:"logradouro_destinatario"`
	CounterpartyNumber   string `json:"numero_destinatario"`
	CounterpartyDistrict string `json:"bairro_destinatario"`
	CounterpartyCity     string `json:"municipio_destinatario"`
	CounterpartyState    string `json:"uf_destinatario"`
	CounterpartyZipCode  string `json:"cep_destinatario"`

	Lines []DocumentLine `json:"itens"`

	GrossValue decimal.Decimal `json:"valor_produtos"`
	TotalValue decimal.Decimal `json:"valor_total"`

	ReferencedAccessKey string `json:"chave_nfe_referenciada,omitempty"`
	AdditionalInfo      string `json:"informacoes_adicionais,omitempty"`
}

// DocumentLine é uma linha do payload.
type DocumentLine struct {
	Sequence     int             `json:"numero_item"`
	ProductCode  string          `json:"codigo_produto"`
	Description  string          `json:"descricao"`
	NCM          string          `json:"codigo_ncm"`
	CFOP         string          `json:"cfop"`
	TaxSituation string          `json:"situacao_tributaria"`
	Quantity     decimal.Decimal `json:"quantidade"`
	UnitValue    decimal.Decimal `json:"valor_unitario"`
	TotalValue   decimal.Decimal `json:"valor_bruto"`
}
