package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reglet-dev/skillguard/application/identity"
	"github.com/reglet-dev/skillguard/application/skill"
	"github.com/reglet-dev/skillguard/cmd/skillguard/internal/server"
	"github.com/reglet-dev/skillguard/domain/policy"
	"github.com/reglet-dev/skillguard/domain/ports"
	"github.com/reglet-dev/skillguard/domain/rbac"
	"github.com/reglet-dev/skillguard/infrastructure/casbinrbac"
	"github.com/reglet-dev/skillguard/infrastructure/httpauth"
	"github.com/reglet-dev/skillguard/infrastructure/parser"
	"github.com/reglet-dev/skillguard/infrastructure/samlbridge"
	"github.com/reglet-dev/skillguard/infrastructure/telemetry"
	"github.com/reglet-dev/skillguard/infrastructure/userstore"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	serveSkills        []string
	serveSecureCookies bool
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the skillguard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Session.Secret == "" {
				return fmt.Errorf("session secret is required (set session.secret or SKILLGUARD_SESSION_SECRET)")
			}
			handler, closeDB, err := buildServer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", slog.String("addr", cfg.Server.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !stdErrors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	c.Flags().StringArrayVar(&serveSkills, "skill", nil, "Manifest to install at startup (repeatable)")
	c.Flags().BoolVar(&serveSecureCookies, "secure-cookies", false, "Mark the session cookie Secure (use behind TLS)")
	return c
}

// databaseDSN returns the configured DSN, or a SQLite file under
// ~/.skillguard whose directory is created on demand.
func databaseDSN() (string, error) {
	if cfg.Database.DSN != "" {
		return cfg.Database.DSN, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".skillguard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, "skillguard.db"), nil
}

func openUserStore(ctx context.Context) (*userstore.BunStore, func(), error) {
	dsn, err := databaseDSN()
	if err != nil {
		return nil, nil, err
	}
	db, err := userstore.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing database", slog.Any("error", err))
		}
	}
	store := userstore.NewBunStore(db)
	if err := store.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Debug("user store ready", slog.String("database", string(userstore.DetectDatabaseType(dsn))))
	return store, closeDB, nil
}

func buildServer(ctx context.Context) (http.Handler, func(), error) {
	users, closeDB, err := openUserStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	handler, err := buildRouter(ctx, users)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return handler, closeDB, nil
}

func buildRouter(ctx context.Context, users *userstore.BunStore) (http.Handler, error) {
	for _, email := range cfg.Server.Admins {
		if _, err := users.Upsert(ctx, &rbac.UserWithRole{Email: email, Role: rbac.RoleAdmin}); err != nil {
			return nil, err
		}
	}

	sessions, err := httpauth.NewSessionManager(cfg.Session.Secret, httpauth.WithTTL(cfg.Session.TTL))
	if err != nil {
		return nil, err
	}
	accessMetrics, err := telemetry.NewAccessMetrics()
	if err != nil {
		return nil, err
	}
	denialMetrics, err := telemetry.NewDenialMetrics()
	if err != nil {
		return nil, err
	}
	enforcer, err := casbinrbac.NewEnforcer()
	if err != nil {
		return nil, err
	}

	var oauth *identity.OAuthManager
	if len(cfg.OAuth.Providers) > 0 {
		oauth, err = identity.NewOAuthManager(users, cfg.OAuth.Providers, identity.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	var (
		saml       *identity.SAMLManager
		assertions ports.AssertionVerifier
	)
	if len(cfg.SAML.Providers) > 0 {
		saml, err = identity.NewSAMLManager(users, cfg.SAML.Providers, identity.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		secrets := make(map[string]string, len(cfg.SAML.Providers))
		for _, p := range cfg.SAML.Providers {
			secrets[p.Name] = p.AssertionSecret
		}
		verifier, err := samlbridge.NewVerifier(secrets, samlbridge.WithLeeway(30*time.Second))
		if err != nil {
			return nil, err
		}
		assertions = verifier
	}

	registry := skill.NewRegistry(
		skill.WithLogger(logger),
		skill.WithDenialHandler(policy.MultiDenialHandler{
			&policy.SlogDenialHandler{Logger: logger},
			denialMetrics,
		}),
	)
	approver := skill.NewApprover(newApprovalStore(), nil, skill.WithApproverLogger(logger))

	for _, path := range serveSkills {
		manifest, err := parser.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := approver.Review(manifest); err != nil {
			return nil, fmt.Errorf("%s: %w (run skillguard approve first)", path, err)
		}
		if err := registry.Install(manifest); err != nil {
			return nil, err
		}
	}

	return server.NewRouter(server.Dependencies{
		Auth: httpauth.NewMiddleware(sessions, users,
			httpauth.WithLogger(logger),
			httpauth.WithAccessMetrics(accessMetrics),
			httpauth.WithAuthorizer(enforcer),
		),
		Sessions:      sessions,
		OAuth:         oauth,
		SAML:          saml,
		Assertions:    assertions,
		Registry:      registry,
		Approver:      approver,
		Enforcer:      enforcer,
		Logger:        logger,
		SecureCookies: serveSecureCookies,
	}), nil
}
