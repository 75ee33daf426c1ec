package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType distingue os dois documentos pareados da locação: a remessa
// (equipamento saindo para o cliente) e o retorno (equipamento voltando).
type MovementType string

const (
	MovementOutbound MovementType = "REMESSA"
	MovementReturn   MovementType = "RETORNO"
)

// DocumentStatus é o estado interno do documento no ciclo de vida.
// PENDING e PROCESSING são transitórios; os demais são terminais, exceto
// AUTHORIZED, que admite uma única transição adicional (cancelamento).
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "PENDING"    // persistido, ainda não enviado ao gateway
	StatusProcessing DocumentStatus = "PROCESSING" // aceito pelo gateway, aguardando SEFAZ
	StatusAuthorized DocumentStatus = "AUTHORIZED" // autorizado, chave de acesso atribuída
	StatusRejected   DocumentStatus = "REJECTED"   // rejeitado pela autoridade
	StatusCancelled  DocumentStatus = "CANCELLED"  // cancelado após autorização
	StatusDenied     DocumentStatus = "DENIED"     // uso denegado (irrecuperável)
	StatusError      DocumentStatus = "ERROR"      // falha de envio; a linha permanece para retry/inspeção
)

// Terminal informa se o status não deve mais ser sobrescrito por sincronização.
// AUTHORIZED é terminal para o sync, mas ainda admite cancelamento explícito.
func (s DocumentStatus) Terminal() bool {
	switch s {
	case StatusAuthorized, StatusRejected, StatusCancelled, StatusDenied:
		return true
	}
	return false
}

// ActiveStatuses são os status que contam para as invariantes de unicidade
// (no máximo um documento ativo por locação/remessa referenciada).
var ActiveStatuses = []DocumentStatus{StatusPending, StatusProcessing, StatusAuthorized}

// Address é o endereço estruturado usado tanto no emitente quanto no snapshot
// do destinatário.
type Address struct {
	Street   string
	Number   string
	District string
	City     string
	CityCode string // código IBGE do município
	State    string // UF; base da comparação de jurisdição (CFOP)
	ZipCode  string
}

// Empty informa se nenhum campo essencial do endereço foi preenchido.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.State == ""
}

// FiscalDocument é a entidade central: uma nota de movimentação de mercadoria
// (remessa ou retorno de locação) rastreada junto ao gateway fiscal.
//
// O destinatário é um snapshot capturado na emissão; correções posteriores no
// cadastro do cliente nunca alteram um documento já transmitido. Documentos
// jamais são excluídos fisicamente: cancelamento é transição de status, para
// preservar a trilha de auditoria legal.
type FiscalDocument struct {
	ID       string
	TenantID string

	BookingID    string
	InternalRef  string // referência opaca; chave de idempotência junto ao gateway
	MovementType MovementType

	Status        DocumentStatus
	GatewayStatus string // status cru do gateway, guardado ao lado do enum mapeado

	// Atribuídos somente após autorização.
	Number    string
	Series    string
	AccessKey string // chave de acesso (44 dígitos)

	OperationNature string // natureza da operação (texto livre)
	CFOP            string // código derivado da jurisdição (tabela 2×2)
	GrossValue      decimal.Decimal
	TotalValue      decimal.Decimal

	// Snapshot do destinatário no momento da emissão.
	CounterpartyName     string
	CounterpartyTaxID    string
	CounterpartyStateReg string
	CounterpartyAddress  Address

	// Cadeia de referência: o retorno aponta para a remessa (FK unidirecional;
	// o caminho inverso é consulta derivada por referenced_doc_id).
	ReferencedDocID     string
	ReferencedAccessKey string

	AuthorizedAt   *time.Time
	CancelledAt    *time.Time
	CancelProtocol string
	CancelReason   string
	ErrorMessage   string

	XMLURL string
	PDFURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FiscalDocumentItem é uma linha de equipamento do documento. Criado
// atomicamente com o documento e imutável após o envio.
type FiscalDocumentItem struct {
	ID           string
	DocumentID   string
	Sequence     int
	EquipmentID  string
	ProductCode  string
	Description  string
	NCM          string // classificação fiscal da mercadoria
	CFOP         string // pode divergir por linha
	TaxSituation string
	Quantity     decimal.Decimal
	UnitValue    decimal.Decimal
	TotalValue   decimal.Decimal
}
