package console

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/config"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/dataservice"
	gdb "github.com/ayushraiyani0003/HRCentral-sub004/internal/db"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// backend hands out data services for the kinds a command touches. Remote
// mode talks to the API server; embedded mode runs on a seeded in-memory
// database that lives as long as the process.
type backend struct {
	cfg      *config.Config
	embedded bool
	logger   *zap.SugaredLogger
	db       interfaces.Database
}

func newBackend(cfg *config.Config, embedded bool, logger *zap.SugaredLogger) *backend {
	return &backend{cfg: cfg, embedded: embedded, logger: logger}
}

func (b *backend) service(ctx context.Context, kind *entities.Kind) (resource.Service, error) {
	if !b.embedded {
		client := dataservice.NewHTTPClient(b.cfg.Client.APIBaseURL, b.cfg.Client.APITimeout)
		return dataservice.NewHTTPService(client, kind, b.logger)
	}

	if b.db == nil {
		db := gdb.NewInMemoryDatabase()
		if err := gdb.ConnectAndMigrate(ctx, db, gdb.AllSchemas()); err != nil {
			return nil, err
		}
		if err := gdb.SeedAll(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to seed embedded database: %w", err)
		}
		b.db = db
	}
	return dataservice.NewRepositoryService(b.db.Repository(kind.Schema), kind, b.logger)
}

// orchestrator builds the screen controller for kind. One-shot commands
// search synchronously; the shell keeps the configured debounce.
func (b *backend) orchestrator(ctx context.Context, kind *entities.Kind, view resource.ViewCoordinator, interactive bool) (*resource.Orchestrator, error) {
	svc, err := b.service(ctx, kind)
	if err != nil {
		return nil, err
	}
	opts := kind.Options()
	opts.Logger = b.logger
	opts.RemoteSearch = b.cfg.Client.RemoteSearch
	opts.SearchDebounce = -1
	if interactive && b.cfg.Client.SearchDebounce > 0 {
		opts.SearchDebounce = b.cfg.Client.SearchDebounce
	}
	return resource.New(svc, view, opts), nil
}

func (b *backend) close(ctx context.Context) {
	if b.db != nil {
		_ = b.db.Disconnect(ctx)
	}
}

func lookupKind(name string) (*entities.Kind, error) {
	kind, ok := entities.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q (run \"kinds\" to list them)", name)
	}
	return kind, nil
}
