package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/locagora/fiscal-api/internal/application/dto"
	"github.com/locagora/fiscal-api/internal/application/fiscal"
	"github.com/locagora/fiscal-api/internal/domain/entity"
)

// FiscalHandler atende as operações do ciclo de vida dos documentos fiscais.
type FiscalHandler struct {
	orch *fiscal.Orchestrator
}

// NewFiscalHandler constrói o handler.
func NewFiscalHandler(orch *fiscal.Orchestrator) *FiscalHandler {
	return &FiscalHandler{orch: orch}
}

// EmitOutbound emite a nota de remessa da locação.
// POST /api/fiscal/documents/outbound
func (h *FiscalHandler) EmitOutbound(c *fiber.Ctx) error {
	return h.emit(c, h.orch.EmitOutbound)
}

// EmitReturn emite a nota de retorno da locação.
// POST /api/fiscal/documents/return
func (h *FiscalHandler) EmitReturn(c *fiber.Ctx) error {
	return h.emit(c, h.orch.EmitReturn)
}

func (h *FiscalHandler) emit(c *fiber.Ctx, emitFn func(ctx context.Context, tenantID, bookingID string, equipmentIDs []string) (*entity.FiscalDocument, error)) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.EmitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.BookingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "booking_id obrigatório"})
	}
	doc, err := emitFn(c.Context(), tenantID, in.BookingID, in.EquipmentIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DocumentFromEntity(doc, nil))
}

// GetByID devolve o documento com suas linhas.
// GET /api/fiscal/documents/:id
func (h *FiscalHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, items, err := h.orch.GetDocument(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DocumentFromEntity(doc, items))
}

// ListByBooking lista os documentos de uma locação.
// GET /api/fiscal/bookings/:bookingId/documents
func (h *FiscalHandler) ListByBooking(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	docs, err := h.orch.ListByBooking(c.Context(), tenantID, c.Params("bookingId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, dto.DocumentFromEntity(doc, nil))
	}
	return c.JSON(out)
}

// Sync consulta o gateway e atualiza o status do documento.
// POST /api/fiscal/documents/:id/sync
func (h *FiscalHandler) Sync(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	doc, err := h.orch.SyncStatus(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DocumentFromEntity(doc, nil))
}

// Cancel cancela um documento autorizado.
// POST /api/fiscal/documents/:id/cancel
func (h *FiscalHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	doc, err := h.orch.Cancel(c.Context(), tenantID, c.Params("id"), in.Justification)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DocumentFromEntity(doc, nil))
}

// Correct registra uma carta de correção.
// POST /api/fiscal/documents/:id/correction
func (h *FiscalHandler) Correct(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CorrectionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	doc, err := h.orch.CorrectionLetter(c.Context(), tenantID, c.Params("id"), in.Correction)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.DocumentFromEntity(doc, nil))
}

// ExportXML devolve o XML assinado do documento autorizado.
// GET /api/fiscal/documents/:id/xml
func (h *FiscalHandler) ExportXML(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	data, err := h.orch.ExportSignedXML(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Send(data)
}

// ExportPDF devolve o DANFE simplificado do documento autorizado.
// GET /api/fiscal/documents/:id/pdf
func (h *FiscalHandler) ExportPDF(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	data, err := h.orch.ExportDANFE(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(data)
}
