package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/claimdesk/internal/api"
	"github.com/Veraticus/claimdesk/internal/common"
	"github.com/Veraticus/claimdesk/internal/config"
	"github.com/Veraticus/claimdesk/internal/engine"
	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/storage"
	"github.com/spf13/viper"
)

// newBackend builds the claims API client. Tests replace it.
var newBackend = func() (service.ClaimsBackend, error) {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		return nil, common.NewUserError("claims API is not configured (set api.base_url or CLAIMDESK_API_BASE_URL)", err)
	}
	client, err := api.NewClient(*cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// initStorage opens the snapshot cache and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath()

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if viper.IsSet("database.keep_snapshots") {
		store.SetKeepSnapshots(viper.GetInt("database.keep_snapshots"))
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openSession wires the backend and the snapshot cache into a session. With
// offline set the backend is never contacted. The returned func closes the cache.
func openSession(ctx context.Context, offline bool) (*engine.Session, func(), error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}

	var backend service.ClaimsBackend = offlineBackend{}
	if !offline {
		backend, err = newBackend()
		if err != nil {
			closeStore()
			return nil, nil, err
		}
	}

	return engine.NewSession(backend, store), closeStore, nil
}

// loadReport fills the session from the backend, or from the cache when offline.
// A failed fetch that still left a cached snapshot is reported as a warning.
func loadReport(ctx context.Context, session *engine.Session, offline bool) (warning string, err error) {
	if offline {
		if err := session.LoadCached(ctx); err != nil {
			return "", common.NewUserError("no cached snapshot yet; run 'claimdesk report' online first", err)
		}
		return "", nil
	}

	if err := session.Refresh(ctx); err != nil {
		if session.Source() == engine.SourceCached {
			return fmt.Sprintf("Claims API unavailable (%s); showing snapshot from %s",
				common.UserMessage(err), session.Snapshot().FetchedAt.Local().Format("2006-01-02 15:04")), nil
		}
		return "", err
	}
	return "", nil
}

// offlineBackend stands in for the API when --offline is given.
type offlineBackend struct{}

var errOffline = common.NewUserError("offline mode: the claims API is not contacted", common.ErrProviderUnavailable)

func (offlineBackend) FetchClaimsReport(context.Context) (model.Snapshot, error) {
	return model.Snapshot{}, errOffline
}

func (offlineBackend) ReturnForReview(context.Context, string, string) error { return errOffline }

func (offlineBackend) MarkAsPaid(context.Context, string) error { return errOffline }

func (offlineBackend) Approve(context.Context, string) error { return errOffline }

func (offlineBackend) Reject(context.Context, string, string) error { return errOffline }
