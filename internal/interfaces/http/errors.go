package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/locagora/fiscal-api/internal/application/dto"
	"github.com/locagora/fiscal-api/internal/domain"
)

// respondError traduz erros de domínio para o envelope HTTP. Listas de
// pendências (configuração/dados) saem em Details para a UI mostrar tudo.
func respondError(c *fiber.Ctx, err error) error {
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "CONFIGURACAO_INCOMPLETA", Message: "configuração fiscal incompleta", Details: cfgErr.Missing,
		})
	}
	var incErr *domain.IncompleteDataError
	if errors.As(err, &incErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "DADOS_INSUFICIENTES", Message: "dados insuficientes para emissão", Details: incErr.Missing,
		})
	}
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: valErr.Error(),
		})
	}
	var invErr *domain.InvariantViolationError
	if errors.As(err, &invErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "DOCUMENTO_ATIVO_DUPLICADO", Message: invErr.Message,
		})
	}
	var certErr *domain.CertificateError
	if errors.As(err, &certErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "CERTIFICADO_" + certErr.Reason, Message: certErr.Error(),
		})
	}
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Code: "GATEWAY", Message: gwErr.Error(),
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso não encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acesso negado"})
	case errors.Is(err, domain.ErrBookingNotEligible):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCACAO_NAO_ELEGIVEL", Message: err.Error()})
	case errors.Is(err, domain.ErrReferenceNotAuthorized):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "REMESSA_NAO_AUTORIZADA", Message: err.Error()})
	case errors.Is(err, domain.ErrDocumentNotCancellable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "NAO_CANCELAVEL", Message: err.Error()})
	case errors.Is(err, domain.ErrCertificateMissing):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CERTIFICADO_AUSENTE", Message: err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
