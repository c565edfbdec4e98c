package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/taskroom-backend/config"
	httpapi "github.com/GoSim-25-26J-441/taskroom-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/jobs"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/mailer"
	projectrepo "github.com/GoSim-25-26J-441/taskroom-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/realtime"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/storage/postgres"
	taskrepo "github.com/GoSim-25-26J-441/taskroom-backend/internal/tasks/repository"
	userrepo "github.com/GoSim-25-26J-441/taskroom-backend/internal/users/repository"
)

const serviceName = "taskroom-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := postgres.DSN(&cfg.Database)
	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      dsn,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("db: %v", err)
	}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	hub := realtime.NewHub()
	var redisPinger httpapi.Pinger
	if rdb != nil {
		defer rdb.Close()
		relay := realtime.NewRedisRelay(rdb, hub)
		hub.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Printf("[error] operation=realtime.relay error=%v", err)
			}
		}()
		redisPinger = httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	users := userrepo.NewUserRepository(sqlDB)
	services := bootstrap.BuildServices(bootstrap.ServiceDeps{
		Users:     users,
		Projects:  projectrepo.NewProjectRepository(pool),
		Tasks:     taskrepo.NewTaskRepository(pool),
		Mailer:    mailer.New(cfg.Mail, cfg.App.FrontendURL),
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		Hub:       hub,
	})

	scheduler := jobs.NewScheduler(services.Users, cfg.Jobs.PendingTokenTTL)
	if err := scheduler.Start(cfg.Jobs.TokenPurgeSchedule); err != nil {
		log.Fatalf("jobs: %v", err)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		FrontendURL: cfg.App.FrontendURL,
		Services:    services,
		DB:          pool,
		Redis:       redisPinger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[info] %s listening on :%s env=%s", serviceName, cfg.Server.Port, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[info] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[error] operation=shutdown error=%v", err)
	}
	scheduler.Stop(shutdownCtx)
}
