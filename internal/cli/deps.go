package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/DukeRupert/promptgate/internal"
	"github.com/DukeRupert/promptgate/internal/domain"
	"github.com/DukeRupert/promptgate/internal/ledger"
	"github.com/DukeRupert/promptgate/internal/repository"
	"github.com/DukeRupert/promptgate/internal/service"
	"github.com/DukeRupert/promptgate/internal/store"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// deps holds the services a command needs, wired the way the server wires them.
type deps struct {
	cfg           *internal.Config
	logger        *slog.Logger
	db            *sql.DB
	catalog       *domain.PlanCatalog
	admission     service.AdmissionController
	usage         service.UsageService
	subscriptions service.SubscriptionService

	closers []io.Closer
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i].Close()
	}
}

// loadDeps reads configuration and connects to the database and ledger.
// Logs go to stderr so stdout stays machine-readable.
func loadDeps(ctx context.Context) (*deps, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(os.Stderr, cfg.Env, "warn")

	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	d := &deps{cfg: cfg, logger: logger, db: db, closers: []io.Closer{db}}

	if err := internal.PingDatabase(ctx, db, internal.DefaultConnectRetry, logger); err != nil {
		d.Close()
		return nil, err
	}

	lcfg := ledger.Config{Backend: cfg.LedgerBackend, DB: db, SQLitePath: cfg.SQLitePath}
	if cfg.LedgerBackend == ledger.BackendRedis {
		client, err := internal.ConnectRedis(ctx, cfg.RedisURL, internal.DefaultConnectRetry, logger)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, client)
		lcfg.Redis = client
	}
	usageLedger, err := ledger.New(lcfg, logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("ledger initialization failed: %w", err)
	}
	if c, ok := usageLedger.(io.Closer); ok {
		d.closers = append(d.closers, c)
	}

	queries := repository.New(db)
	d.catalog = domain.DefaultPlanCatalog()
	resolver := service.NewEntitlementResolver(store.NewAccountStore(queries), d.catalog, logger)
	d.admission = service.NewAdmissionController(resolver, usageLedger, logger)
	d.usage = service.NewUsageService(d.admission, usageLedger, logger)
	d.subscriptions = service.NewSubscriptionService(db, queries, d.catalog, logger)
	return d, nil
}

func parseAccountID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid account id %q: %w", arg, err)
	}
	return id, nil
}
