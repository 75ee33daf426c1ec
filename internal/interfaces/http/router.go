package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/locagora/fiscal-api/internal/application/fiscal"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	Orchestrator *fiscal.Orchestrator
	JWTSecret    string
}

// Router registra as rotas da API. Tudo sob /api/fiscal exige Bearer Token;
// o tenant vem sempre do token, nunca da URL.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	protected := api.Group("/fiscal", AuthMiddleware(deps.JWTSecret))

	// Documentos fiscais
	fiscalHandler := NewFiscalHandler(deps.Orchestrator)
	docs := protected.Group("/documents")
	docs.Post("/outbound", fiscalHandler.EmitOutbound)
	docs.Post("/return", fiscalHandler.EmitReturn)
	docs.Get("/:id", fiscalHandler.GetByID)
	docs.Post("/:id/sync", fiscalHandler.Sync)
	docs.Post("/:id/cancel", fiscalHandler.Cancel)
	docs.Post("/:id/correction", fiscalHandler.Correct)
	docs.Get("/:id/xml", fiscalHandler.ExportXML)
	docs.Get("/:id/pdf", fiscalHandler.ExportPDF)

	protected.Get("/bookings/:bookingId/documents", fiscalHandler.ListByBooking)

	// Certificado digital
	certHandler := NewCertificateHandler(deps.Orchestrator)
	protected.Post("/certificate", certHandler.Upload)
	protected.Get("/certificate", certHandler.Status)
	protected.Delete("/certificate", certHandler.Remove)
	protected.Get("/certificates/expiring", certHandler.ExpiringSoon)
}
