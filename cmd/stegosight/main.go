// Command stegosight runs steganography operations from the command
// line or serves the local HTTP control API.
//
// Usage:
//
//	stegosight embed -carrier photo.png -payload secret.txt [-method adaptive] [-output out.png] [-encrypt]
//	stegosight extract -input stego.png [-method adaptive] [-password pw] [-output payload.bin]
//	stegosight analyze -input suspect.png [-techniques chi_square,histogram,ela]
//	stegosight neutralize -input suspect.png [-tier standard] [-methods metadata,recompress] [-output clean.png]
//	stegosight serve [-config config.yaml]
//
// All commands accept -config; settings may also come from STEGOSIGHT_*
// environment variables or a .env file.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stegosight/stegosight/internal/api"
	apimiddleware "github.com/stegosight/stegosight/internal/api/middleware"
	"github.com/stegosight/stegosight/internal/config"
	"github.com/stegosight/stegosight/internal/domain"
	"github.com/stegosight/stegosight/internal/engine"
	"github.com/stegosight/stegosight/internal/events"
	"github.com/stegosight/stegosight/internal/history"
	"github.com/stegosight/stegosight/internal/platform/logger"
	"github.com/stegosight/stegosight/internal/platform/postgres"
	"github.com/stegosight/stegosight/internal/service"
	"github.com/stegosight/stegosight/internal/service/auth"
	"github.com/stegosight/stegosight/internal/task"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "stegosight: %v\n", err)
		os.Exit(1)
	}
}

var errCancelled = errors.New("operation cancelled")

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}

	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	command, args := args[0], args[1:]
	switch command {
	case "embed", "extract", "analyze", "neutralize":
		return runOperation(command, args)
	case "serve":
		return runServe(args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: stegosight <command> [flags]

Commands:
  embed       hide a payload inside a carrier file
  extract     recover a payload from a stego file
  analyze     scan a file for hidden content and score the risk
  neutralize  sanitize a file, degrading any hidden payload
  serve       run the local HTTP control API

Run 'stegosight <command> -h' for command flags.`)
}

// appContext holds the wired application components shared by the CLI
// and serve modes.
type appContext struct {
	cfg     *config.Config
	logger  *slog.Logger
	pool    *task.Pool
	service *service.OperationService
	store   history.Store
	db      *sql.DB
}

func (a *appContext) shutdown() {
	a.pool.Stop()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func buildApp(ctx context.Context, configPath string) (*appContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.Setup(cfg.Server.LogLevel)

	var (
		store history.Store
		db    *sql.DB
	)
	switch cfg.History.Driver {
	case "postgres":
		db, err = postgres.Open(ctx, cfg.History.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.MigrateUp(db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		store = postgres.NewHistoryStore(db)
	default:
		store = history.NewMemoryStore()
	}

	emitter := events.NewInMemoryEmitter(log)
	emitter.RegisterHandler(history.NewRecorder(store, log))

	pool := task.NewPool(task.PoolConfig{
		WorkerCount: cfg.Pool.WorkerCount,
		QueueSize:   cfg.Pool.QueueSize,
	}, log)
	pool.Start()

	eng := engine.NewMockEngine(engine.MockConfig{
		Steps:     cfg.Engine.Steps,
		StepDelay: time.Duration(cfg.Engine.StepDelayMS) * time.Millisecond,
	})

	svc := service.NewOperationService(pool, eng, emitter, log)

	return &appContext{
		cfg:     cfg,
		logger:  log,
		pool:    pool,
		service: svc,
		store:   store,
		db:      db,
	}, nil
}

// runOperation executes one operation end to end: submit, stream
// progress to stderr, print the result payload as JSON on stdout.
// Ctrl-C requests cooperative cancellation.
func runOperation(command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")

	var (
		carrier    = fs.String("carrier", "", "carrier file (embed)")
		payload    = fs.String("payload", "", "payload file (embed)")
		input      = fs.String("input", "", "input file (extract, analyze, neutralize)")
		method     = fs.String("method", "adaptive", "embedding method")
		password   = fs.String("password", "", "payload password (extract)")
		output     = fs.String("output", "", "output path")
		encrypt    = fs.Bool("encrypt", false, "encrypt payload before embedding")
		techniques = fs.String("techniques", "", "comma-separated detectors (analyze)")
		tier       = fs.String("tier", "standard", "neutralization tier")
		methods    = fs.String("methods", "", "comma-separated pipeline steps (neutralize)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	unit, err := buildUnit(command, unitFlags{
		carrier:    *carrier,
		payload:    *payload,
		input:      *input,
		method:     *method,
		password:   *password,
		output:     *output,
		encrypt:    *encrypt,
		techniques: splitList(*techniques),
		tier:       *tier,
		methods:    splitList(*methods),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.shutdown()

	done := make(chan task.Event, 1)
	observer := func(e task.Event) {
		if e.Terminal {
			done <- e
			return
		}
		if e.Percent >= 0 {
			fmt.Fprintf(os.Stderr, "\r%3d%% %s", e.Percent, e.Message)
		}
	}

	id, err := app.service.Submit(ctx, unit, observer)
	if err != nil {
		return err
	}

	var terminal task.Event
	select {
	case terminal = <-done:
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "\ncancelling...")
		if err := app.service.Cancel(id); err != nil {
			return err
		}
		terminal = <-done
	}
	fmt.Fprintln(os.Stderr)

	switch terminal.Outcome {
	case task.OutcomeSuccess:
		out, err := json.MarshalIndent(terminal.Payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case task.OutcomeCancelled:
		return errCancelled
	default:
		return fmt.Errorf("operation failed: %s", terminal.Err)
	}
}

type unitFlags struct {
	carrier    string
	payload    string
	input      string
	method     string
	password   string
	output     string
	encrypt    bool
	techniques []string
	tier       string
	methods    []string
}

func buildUnit(command string, f unitFlags) (*domain.TaskUnit, error) {
	switch command {
	case "embed":
		if f.carrier == "" || f.payload == "" {
			return nil, errors.New("embed requires -carrier and -payload")
		}
		return domain.NewTaskUnit(domain.OperationEmbed, []string{f.carrier}, domain.EmbedParams{
			Method:      f.method,
			PayloadPath: f.payload,
			OutputPath:  f.output,
			Encrypt:     f.encrypt,
		})
	case "extract":
		if f.input == "" {
			return nil, errors.New("extract requires -input")
		}
		return domain.NewTaskUnit(domain.OperationExtract, []string{f.input}, domain.ExtractParams{
			Method:     f.method,
			Password:   f.password,
			OutputPath: f.output,
		})
	case "analyze":
		if f.input == "" {
			return nil, errors.New("analyze requires -input")
		}
		return domain.NewTaskUnit(domain.OperationAnalyze, []string{f.input}, domain.AnalyzeParams{
			Techniques: f.techniques,
		})
	case "neutralize":
		if f.input == "" {
			return nil, errors.New("neutralize requires -input")
		}
		return domain.NewTaskUnit(domain.OperationNeutralize, []string{f.input}, domain.NeutralizeParams{
			Tier:       f.tier,
			Methods:    f.methods,
			OutputPath: f.output,
		})
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// runServe starts the HTTP control API and blocks until interrupted.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.shutdown()

	cfg := app.cfg
	if cfg.Server.JWTSecret == "" {
		return errors.New("serve mode requires STEGOSIGHT_SERVER_JWT_SECRET")
	}
	if cfg.Server.PassphraseHash == "" {
		return errors.New("serve mode requires STEGOSIGHT_SERVER_PASSPHRASE_HASH (see cmd/hashgen)")
	}

	tokenLifetime := time.Duration(cfg.Server.TokenLifetimeMinutes) * time.Minute
	jwtService, err := auth.NewJWTService(cfg.Server.JWTSecret, tokenLifetime)
	if err != nil {
		return err
	}

	router := api.NewRouter(api.RouterDeps{
		Auth: api.NewAuthHandler(
			cfg.Server.PassphraseHash,
			auth.NewBcryptVerifier(),
			jwtService,
			tokenLifetime,
			app.logger,
		),
		Operations: api.NewOperationHandler(app.service, app.logger),
		History:    api.NewHistoryHandler(app.store, app.logger),
		AuthMW:     apimiddleware.NewAuthMiddleware(jwtService),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("control API listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
