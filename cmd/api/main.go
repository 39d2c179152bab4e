package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/solarcrm-api/docs"
	"github.com/jhoicas/solarcrm-api/internal/application/board"
	"github.com/jhoicas/solarcrm-api/internal/application/dto"
	"github.com/jhoicas/solarcrm-api/internal/application/session"
	"github.com/jhoicas/solarcrm-api/internal/application/transition"
	"github.com/jhoicas/solarcrm-api/internal/domain/repository"
	"github.com/jhoicas/solarcrm-api/internal/infrastructure/crmapi"
	"github.com/jhoicas/solarcrm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/solarcrm-api/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/solarcrm-api/internal/interfaces/http"
	"github.com/jhoicas/solarcrm-api/pkg/config"
	"github.com/jhoicas/solarcrm-api/pkg/logger"
)

// @title                       SolarCRM Workflow API
// @version                     1.0
// @description                 Tablero Kanban del flujo de solicitudes del CRM: transiciones por rol, asignación y reconciliación en tiempo real.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Token JWT emitido por el backend del CRM. Formato: Bearer {token}
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("crm", cfg.CRM.BaseURL).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	crm := crmapi.NewClient(crmapi.Config{
		BaseURL:      cfg.CRM.BaseURL,
		ServiceToken: cfg.CRM.ServiceToken,
		Timeout:      cfg.CRM.Timeout(),
	})

	store := board.NewStore()
	boardUC := board.NewUseCase(store, crm)
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.CRM.Timeout())
	if n, err := boardUC.Load(loadCtx); err != nil {
		// El tablero arranca vacío; se completa con eventos WS o POST /api/board/reload.
		log.Warn().Err(err).Msg("carga inicial del tablero")
	} else {
		log.Info().Int("enquiries", n).Msg("tablero cargado")
	}
	cancelLoad()

	// Bitácora opcional en PostgreSQL. Sin DB_HOST ni DATABASE_URL queda deshabilitada.
	var journal repository.TransitionRepository
	if cfg.DB.Enabled() {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("esquema de bitácora")
		}
		journal = postgres.NewTransitionRepository(pool)
		log.Info().Msg("bitácora de transiciones habilitada")
	}

	controller := transition.NewController(store, crm, crm, journal, log.Zerolog())
	sessions := session.NewResolver(crm, cfg.Session.TTL())

	var (
		wg     sync.WaitGroup
		rtStat func() dto.RealtimeStatus
	)
	if cfg.CRM.WSURL != "" {
		listener := realtime.NewListener(realtime.Config{
			URL:   cfg.CRM.WSURL,
			Token: cfg.CRM.ServiceToken,
		}, store, log.Zerolog())
		rtStat = func() dto.RealtimeStatus {
			st := listener.Stats()
			return dto.RealtimeStatus{
				Connected: listener.Connected(),
				Applied:   st.Applied,
				Stale:     st.Stale,
				Rejected:  st.Rejected,
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = listener.Run(ctx)
		}()
	} else {
		log.Warn().Msg("CRM_WS_URL vacío: sin actualizaciones en tiempo real")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.CRM.Timeout() + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "SolarCRM Workflow API",
	}))

	app.Get("/health", httpRouter.Health(httpRouter.HealthDeps{
		Service:        cfg.App.Name,
		Store:          store,
		JournalEnabled: journal != nil,
		Realtime:       rtStat,
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Board:      boardUC,
		Store:      store,
		Controller: controller,
		Sessions:   sessions,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()
	wg.Wait()

	log.Info().Msg("aplicación detenida")
}
