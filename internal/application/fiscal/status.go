package fiscal

import (
	"time"

	"github.com/locagora/fiscal-api/internal/domain/entity"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
)

// Vocabulário de status do gateway. Qualquer valor fora da tabela é tratado
// como transitório (PROCESSING); o valor cru fica guardado de qualquer forma.
const (
	gwStatusAuthorized = "autorizado"
	gwStatusCancelled  = "cancelado"
	gwStatusRejected   = "erro_autorizacao"
	gwStatusDenied     = "denegado"
)

// mapGatewayStatus traduz o status cru do gateway para o enum interno.
func mapGatewayStatus(raw string) entity.DocumentStatus {
	switch raw {
	case gwStatusAuthorized:
		return entity.StatusAuthorized
	case gwStatusCancelled:
		return entity.StatusCancelled
	case gwStatusRejected:
		return entity.StatusRejected
	case gwStatusDenied:
		return entity.StatusDenied
	default:
		return entity.StatusProcessing
	}
}

// applyResponse incorpora a resposta do gateway ao documento: status cru
// verbatim, enum mapeado e os campos atribuídos pela autorização ou pelo
// cancelamento. Não persiste — o chamador decide quando gravar.
func applyResponse(doc *entity.FiscalDocument, resp *gateway.Response, now time.Time) {
	doc.GatewayStatus = resp.Status
	doc.Status = mapGatewayStatus(resp.Status)

	switch doc.Status {
	case entity.StatusAuthorized:
		doc.Number = resp.Number
		doc.Series = resp.Series
		doc.AccessKey = resp.AccessKey
		doc.XMLURL = resp.XMLPath
		doc.PDFURL = resp.PDFPath
		doc.ErrorMessage = ""
		if doc.AuthorizedAt == nil {
			t := now
			doc.AuthorizedAt = &t
		}
	case entity.StatusCancelled:
		doc.CancelProtocol = resp.Protocol
		if doc.CancelledAt == nil {
			t := now
			doc.CancelledAt = &t
		}
	case entity.StatusRejected, entity.StatusDenied:
		doc.ErrorMessage = resp.ErrorMessage()
	}
}
