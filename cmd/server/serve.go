package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cidade-aberta/internal/database"
	"github.com/iliyamo/cidade-aberta/internal/handler"
	"github.com/iliyamo/cidade-aberta/internal/repository"
	"github.com/iliyamo/cidade-aberta/internal/router"
	"github.com/iliyamo/cidade-aberta/internal/scheduler"
	"github.com/iliyamo/cidade-aberta/internal/service"
	"github.com/iliyamo/cidade-aberta/internal/storage"
)

func newServeCommand() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(autoMigrate bool) error {
	a, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autoMigrate {
		if err := database.MigrateUp(ctx, a.db); err != nil {
			return err
		}
	}

	photos, err := storage.NewPhotos(cfg.UploadDir, cfg.BaseURL, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}

	ocorrencias := repository.NewOcorrenciaRepo(a.db)
	gestores := repository.NewGestorRepo(a.db)
	contatos := repository.NewContatoRepo(a.db)
	logs := repository.NewAdminLogRepo(a.db)
	sessions := a.sessions()
	events := a.notifier()

	ocSvc := service.NewOcorrenciaService(ocorrencias, logs, photos, events, log, cfg.ListDefaultLimit, cfg.ListMaxLimit)
	authSvc := service.NewAuthService(gestores, ocorrencias, logs, sessions, cfg.JWTSecret, cfg.BcryptCost,
		cfg.MaxLoginAttempts, cfg.LoginFailureDelay, log)
	authSvc.LockDuration = cfg.LoginLockDuration
	gestorSvc := service.NewGestorService(gestores, logs, cfg.JWTSecret, cfg.InviteTTL, cfg.BcryptCost, log)
	contatoSvc := service.NewContatoService(contatos, logs, events, log, cfg.ContactMaxPerHour,
		cfg.ListDefaultLimit, cfg.ListMaxLimit)

	e := router.New(router.Deps{
		DB:            a.db,
		Redis:         a.rdb,
		Sessions:      sessions,
		Staff:         gestores,
		SessionCookie: cfg.SessionCookie,
		CORSOrigins:   cfg.CORSOrigins,
		UploadDir:     cfg.UploadDir,
		RateLimit:     cfg.RateLimit,
		Cache:         cfg.Cache,
		Log:           log,
	}, router.Handlers{
		Ocorrencias: handler.NewOcorrenciaHandler(ocSvc, photos),
		Tracking:    handler.NewTrackingHandler(ocSvc, photos),
		Contato:     handler.NewContatoHandler(contatoSvc),
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   cfg.SessionCookie,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		}),
		AdminUsers: handler.NewAdminUsersHandler(gestorSvc),
		Stats:      handler.NewStatsHandler(service.NewStatsService(ocorrencias)),
	})

	sched := scheduler.New(log)
	if cfg.HousekeepingSchedule != "" {
		if err := sched.Add(cfg.HousekeepingSchedule, "invite_cleanup",
			scheduler.InviteCleanup(gestores, time.Now, log)); err != nil {
			return err
		}
		sched.Start()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.WithFields(map[string]any{"addr": srv.Addr, "env": cfg.Env}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
