package http

import (
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/locagora/fiscal-api/internal/application/dto"
	"github.com/locagora/fiscal-api/internal/application/fiscal"
)

// CertificateHandler atende a gestão do certificado digital do tenant.
// Somente o papel admin pode alterar o certificado.
type CertificateHandler struct {
	orch *fiscal.Orchestrator
}

// NewCertificateHandler constrói o handler.
func NewCertificateHandler(orch *fiscal.Orchestrator) *CertificateHandler {
	return &CertificateHandler{orch: orch}
}

func requireAdmin(c *fiber.Ctx) error {
	if GetRole(c) != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code: "FORBIDDEN", Message: "operação restrita ao papel admin",
		})
	}
	return nil
}

// Upload valida e armazena o certificado A1.
// POST /api/fiscal/certificate
func (h *CertificateHandler) Upload(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := requireAdmin(c); err != nil {
		return err
	}
	var in dto.CertificateUploadRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.File == "" || in.Passphrase == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "arquivo e senha obrigatórios"})
	}
	container, err := base64.StdEncoding.DecodeString(in.File)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "arquivo deve estar em base64"})
	}

	status, err := h.orch.UploadCertificate(c.Context(), tenantID, container, in.Passphrase)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(status)
}

// Status informa a situação do certificado armazenado.
// GET /api/fiscal/certificate
func (h *CertificateHandler) Status(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	status, err := h.orch.CertificateStatus(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

// Remove apaga o certificado do tenant.
// DELETE /api/fiscal/certificate
func (h *CertificateHandler) Remove(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := requireAdmin(c); err != nil {
		return err
	}
	if err := h.orch.RemoveCertificate(c.Context(), tenantID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExpiringSoon varre certificados vencendo nos próximos N dias (padrão 30).
// GET /api/fiscal/certificates/expiring?days=30
func (h *CertificateHandler) ExpiringSoon(c *fiber.Ctx) error {
	if GetTenantID(c) == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := requireAdmin(c); err != nil {
		return err
	}
	days := c.QueryInt("days", 30)
	if days <= 0 {
		days = 30
	}
	rows, err := h.orch.CertificatesExpiringSoon(c.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ExpiringCertificateResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ExpiringCertificateResponse{
			TenantID:      r.TenantID,
			ExpiresAt:     r.ExpiresAt,
			DaysRemaining: r.DaysRemaining,
		})
	}
	return c.JSON(out)
}
