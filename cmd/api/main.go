package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Werneck0live/cadastro-cnpj/internal/admin"
	"github.com/Werneck0live/cadastro-cnpj/internal/broker"
	"github.com/Werneck0live/cadastro-cnpj/internal/company"
	"github.com/Werneck0live/cadastro-cnpj/internal/config"
	"github.com/Werneck0live/cadastro-cnpj/internal/db"
	"github.com/Werneck0live/cadastro-cnpj/internal/handlers"
	"github.com/Werneck0live/cadastro-cnpj/internal/metrics"
	"github.com/Werneck0live/cadastro-cnpj/internal/repository"
)

// cmd/api/main.go
func main() {
	cfg := config.Load() // .env

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	log := config.InitLogger(cfg.Logging)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid_config", "err", err)
		os.Exit(2)
	}
	log.Info("starting", "port", cfg.Port, "storage", cfg.StorageDriver, "mongo_db", cfg.MongoDB)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()

	repo, closeRepo, err := openRepository(cfg, log)
	if err != nil {
		log.Error("storage_open_error", "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	if *task != "" {
		code := runTask(*task, repo, log)
		closeRepo()
		os.Exit(code)
	}

	// publisher (Rabbit)
	var pub company.EventPublisher
	if cfg.EventsEnabled {
		p, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			log.Error("rabbitmq_connect_error", "err", err)
			os.Exit(1)
		}
		defer p.Close()
		pub = p
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := company.NewService(repo, pub, m, log)
	h := handlers.NewCompanyHandler(svc, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(m),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	// start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful_shutdown_error", "err", err)
	}
	log.Info("stopped")
}

// openRepository returns the configured backend and a function releasing it.
func openRepository(cfg *config.Config, log *slog.Logger) (company.Repository, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("storage_memory", "msg", "data is lost on restart")
		return repository.NewMemoryCompanyRepository(), func() {}, nil
	}

	client, err := db.NewMongoClient(cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = client.Disconnect(context.Background()) }

	repo := repository.NewCompanyRepository(client.Database(cfg.MongoDB))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return repo, closeFn, nil
}

// runTask executes an admin task and returns the process exit code. The
// process ends without starting HTTP.
func runTask(task string, repo company.Repository, log *slog.Logger) int {
	switch task {
	case "seed":
		svc := company.NewService(repo, nil, nil, log)
		if _, err := admin.SeedCompanies(context.Background(), svc, log); err != nil {
			log.Error("seed_failed", "err", err)
			return 1
		}
		log.Info("seed_done")
		return 0
	default:
		log.Error("unknown_admin_task", "task", task)
		return 2
	}
}
