package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/locagora/fiscal-api/internal/application/fiscal"
	"github.com/locagora/fiscal-api/internal/infrastructure/cert"
	"github.com/locagora/fiscal-api/internal/infrastructure/gateway"
	infranfe "github.com/locagora/fiscal-api/internal/infrastructure/nfe"
	infrapdf "github.com/locagora/fiscal-api/internal/infrastructure/pdf"
	"github.com/locagora/fiscal-api/internal/infrastructure/postgres"
	httpRouter "github.com/locagora/fiscal-api/internal/interfaces/http"
	"github.com/locagora/fiscal-api/pkg/config"
	"github.com/locagora/fiscal-api/pkg/crypto"
	"github.com/locagora/fiscal-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	docRepo := postgres.NewFiscalDocumentRepository(pool)
	profileRepo := postgres.NewTenantProfileRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	equipmentRepo := postgres.NewEquipmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Criptografia em repouso: senha do certificado e credencial do gateway
	// nunca são persistidas em claro.
	encryptor, err := crypto.New(cfg.Crypto.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("chave de criptografia inválida (CRYPTO_KEY)")
	}

	certStore := cert.NewStore(profileRepo, encryptor, log)

	gwClient := gateway.NewClient(
		cfg.Gateway.ProductionURL,
		cfg.Gateway.SandboxURL,
		time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second,
		log,
	)

	xmlBuilder := infranfe.NewXMLBuilder()
	xmlSigner := infranfe.NewSigner()
	pdfGenerator := infrapdf.NewDANFEGenerator()

	orchestrator := fiscal.NewOrchestrator(
		docRepo, profileRepo, bookingRepo, customerRepo, equipmentRepo,
		gwClient, txRunner, encryptor, certStore,
		xmlBuilder, xmlSigner, pdfGenerator,
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 * 1024 * 1024, // certificado A1 em base64 no upload
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Locagora Fiscal API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Orchestrator: orchestrator,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
