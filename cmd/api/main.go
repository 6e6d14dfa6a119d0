package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/windoze95/saltybytes-search/internal/ai"
	"github.com/windoze95/saltybytes-search/internal/config"
	"github.com/windoze95/saltybytes-search/internal/fetcher"
	"github.com/windoze95/saltybytes-search/internal/logger"
	"github.com/windoze95/saltybytes-search/internal/router"
	"github.com/windoze95/saltybytes-search/internal/service"
	"github.com/windoze95/saltybytes-search/internal/ws"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the search app.
func main() {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second signal during shutdown kills the process
	context.AfterFunc(ctx, stop)

	// A .env file is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil {
		logger.Get().Info("no .env file loaded", zap.Error(err))
	}

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts from YAML
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Credentials are read once here; a missing key stops startup
	provider, err := ai.NewEnrichmentProvider(cfg)
	if err != nil {
		logger.Get().Fatal("failed to create enrichment provider", zap.Error(err))
	}

	// Fetch the collection once. A failure is shown on the page instead of
	// stopping the server.
	recipeService := service.NewRecipeService(cfg, fetcher.New(), provider)
	if err := recipeService.Load(ctx); err != nil {
		logger.Get().Error("failed to load recipe collection",
			zap.String("url", cfg.EnvVars.RecipesURL),
			zap.Error(err),
		)
	} else {
		logger.Get().Info("recipe collection loaded", zap.Int("recipes", recipeService.Size()))
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, recipeService, hub)

	// Run the server until SIGINT or SIGTERM
	srv := &http.Server{
		Addr:              ":" + cfg.EnvVars.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	if err := runServer(ctx, srv, shutdownTimeout); err != nil {
		logger.Get().Fatal("server stopped", zap.Error(err))
	}
	logger.Get().Info("server stopped")
}

const shutdownTimeout = 10 * time.Second

// runServer serves srv until ctx is done, then shuts it down, waiting up to
// timeout for in-flight requests.
func runServer(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Get().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
