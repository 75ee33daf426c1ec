// Package dto define os contratos JSON da API.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// ErrorResponse é o envelope de erro padrão da API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details carrega listas de pendências (configuração/dados incompletos).
	Details []string `json:"details,omitempty"`
}

// EmitRequest pedido de emissão (remessa ou retorno). EquipmentIDs vazio
// emite a locação inteira; preenchido, restringe ao subconjunto (emissão ou
// retorno parcial).
type EmitRequest struct {
	BookingID    string   `json:"booking_id"`
	EquipmentIDs []string `json:"equipment_ids,omitempty"`
}

// CancelRequest pedido de cancelamento.
type CancelRequest struct {
	Justification string `json:"justificativa"`
}

// CorrectionRequest pedido de carta de correção.
type CorrectionRequest struct {
	Correction string `json:"correcao"`
}

// CertificateUploadRequest upload do certificado A1 em base64 + senha.
// A senha nunca é persistida em claro nem registrada em log.
type CertificateUploadRequest struct {
	File       string `json:"arquivo"` // container .pfx em base64
	Passphrase string `json:"senha"`
}

// DocumentItemResponse linha do documento.
type DocumentItemResponse struct {
	Sequence     int             `json:"sequencia"`
	EquipmentID  string          `json:"equipment_id"`
	ProductCode  string          `json:"codigo"`
	Description  string          `json:"descricao"`
	NCM          string          `json:"ncm"`
	CFOP         string          `json:"cfop"`
	TaxSituation string          `json:"situacao_tributaria"`
	Quantity     decimal.Decimal `json:"quantidade"`
	UnitValue    decimal.Decimal `json:"valor_unitario"`
	TotalValue   decimal.Decimal `json:"valor_total"`
}

// DocumentResponse representação completa do documento fiscal.
type DocumentResponse struct {
	ID            string `json:"id"`
	BookingID     string `json:"booking_id"`
	MovementType  string `json:"tipo_movimento"`
	Status        string `json:"status"`
	GatewayStatus string `json:"status_gateway,omitempty"`

	Number    string `json:"numero,omitempty"`
	Series    string `json:"serie,omitempty"`
	AccessKey string `json:"chave_acesso,omitempty"`

	OperationNature string          `json:"natureza_operacao"`
	CFOP            string          `json:"cfop"`
	GrossValue      decimal.Decimal `json:"valor_produtos"`
	TotalValue      decimal.Decimal `json:"valor_total"`

	CounterpartyName  string `json:"destinatario"`
	CounterpartyTaxID string `json:"destinatario_cnpj_cpf"`

	ReferencedDocID     string `json:"documento_referenciado_id,omitempty"`
	ReferencedAccessKey string `json:"chave_referenciada,omitempty"`

	AuthorizedAt   *time.Time `json:"autorizado_em,omitempty"`
	CancelledAt    *time.Time `json:"cancelado_em,omitempty"`
	CancelProtocol string     `json:"protocolo_cancelamento,omitempty"`
	CancelReason   string     `json:"justificativa_cancelamento,omitempty"`
	ErrorMessage   string     `json:"mensagem_erro,omitempty"`

	XMLURL string `json:"xml_url,omitempty"`
	PDFURL string `json:"pdf_url,omitempty"`

	Items []DocumentItemResponse `json:"itens,omitempty"`

	CreatedAt time.Time `json:"criado_em"`
	UpdatedAt time.Time `json:"atualizado_em"`
}

// DocumentFromEntity converte a entidade (e opcionalmente suas linhas) no DTO.
func DocumentFromEntity(doc *entity.FiscalDocument, items []*entity.FiscalDocumentItem) DocumentResponse {
	resp := DocumentResponse{
		ID:            doc.ID,
		BookingID:     doc.BookingID,
		MovementType:  string(doc.MovementType),
		Status:        string(doc.Status),
		GatewayStatus: doc.GatewayStatus,

		Number:    doc.Number,
		Series:    doc.Series,
		AccessKey: doc.AccessKey,

		OperationNature: doc.OperationNature,
		CFOP:            doc.CFOP,
		GrossValue:      doc.GrossValue,
		TotalValue:      doc.TotalValue,

		CounterpartyName:  doc.CounterpartyName,
		CounterpartyTaxID: doc.CounterpartyTaxID,

		ReferencedDocID:     doc.ReferencedDocID,
		ReferencedAccessKey: doc.ReferencedAccessKey,

		AuthorizedAt:   doc.AuthorizedAt,
		CancelledAt:    doc.CancelledAt,
		CancelProtocol: doc.CancelProtocol,
		CancelReason:   doc.CancelReason,
		ErrorMessage:   doc.ErrorMessage,

		XMLURL: doc.XMLURL,
		PDFURL: doc.PDFURL,

		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, DocumentItemResponse{
			Sequence:     it.Sequence,
			EquipmentID:  it.EquipmentID,
			ProductCode:  it.ProductCode,
			Description:  it.Description,
			NCM:          it.NCM,
			CFOP:         it.CFOP,
			TaxSituation: it.TaxSituation,
			Quantity:     it.Quantity,
			UnitValue:    it.UnitValue,
			TotalValue:   it.TotalValue,
		})
	}
	return resp
}

// ExpiringCertificateResponse linha da varredura de certificados a vencer.
// DaysRemaining é negativo quando o certificado já venceu.
type ExpiringCertificateResponse struct {
	TenantID      string    `json:"tenant_id"`
	ExpiresAt     time.Time `json:"expira_em"`
	DaysRemaining int       `json:"dias_restantes"`
}
