package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"tmfstock/internal/config"
	"tmfstock/internal/core"
	"tmfstock/internal/httpapi"
	"tmfstock/internal/identity"
	"tmfstock/internal/observability"
	"tmfstock/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	stats := observability.NewExpvarRecorder("tmfstock_operations")
	a, err := loadApp(ctx, opts, []core.MetricsRecorder{stats})
	if err != nil {
		return err
	}
	users, err := loadUsers(a.cfg)
	if err != nil {
		return err
	}
	secret := a.cfg.Session.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		a.logger.Warn("TMFSTOCK_SESSION_SECRET not set; sessions will not survive a restart")
	}
	sessions := identity.NewSessions(secret, a.cfg.Session.TTL)

	api := httpapi.New(a.svc, users, sessions,
		httpapi.WithAttachments(a.codec),
		httpapi.WithMetricsHandler(a.metrics.Handler()),
		httpapi.WithDebugVars(),
		httpapi.WithLogger(a.logger),
	)
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      api.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	if a.cfg.OverdueSchedule != "" {
		sched := scheduler.New(a.svc, a.logger)
		if _, err := sched.ScheduleOverdueSweep(a.cfg.OverdueSchedule); err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	a.logger.Info("listening", "addr", srv.Addr, "users", users.Len(), "attachments", a.cfg.Attachments.Mode, "blob", a.cfg.Blob.Driver)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func loadUsers(cfg *config.Config) (*identity.Directory, error) {
	var (
		users []identity.User
		err   error
	)
	if cfg.UsersFile != "" {
		users, err = identity.LoadUsersFile(cfg.UsersFile)
	} else {
		users, err = identity.DemoUsers(bcrypt.DefaultCost)
	}
	if err != nil {
		return nil, err
	}
	return identity.NewDirectory(users)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
