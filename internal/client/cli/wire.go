package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/config"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/client/storage"
	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/cryptox"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// sealSaltKey is the metadata key holding the salt for the sealing key.
const sealSaltKey = "seal_salt"

// NewFromConfig builds the whole client: logger, local storage, credential
// store, request pipeline, session controller and the App on top of them.
// The returned close function releases the database, if one was opened.
func NewFromConfig(ctx context.Context, cfg *config.Config, in io.Reader, out, logOut io.Writer) (*App, func() error, error) {

	log, err := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	lifetimes := tokenstore.Lifetimes{Access: cfg.AccessTokenTTL, Refresh: cfg.RefreshTokenTTL}

	var (
		store   tokenstore.Store
		meta    metadata.Repository
		closeFn = func() error { return nil }
	)

	if cfg.DatabasePath == "" {
		store = tokenstore.NewMemoryStore(tokenstore.WithLifetimes(lifetimes))
		meta = metadata.NewMemoryRepository()
	} else {
		db, err := storage.InitDatabase(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		closeFn = db.Close

		store, meta, err = sqliteStores(ctx, db, cfg.StoreSecret, lifetimes)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	pipeline := client.NewPipeline(cfg.ServerURL, store,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log.With("component", "pipeline")),
	)
	session := services.NewSession(client.NewAuthAPI(pipeline), store, meta, log.With("component", "session"))
	app := NewApp(session, pipeline, in, out, log)

	// Session state is cleared before the user is sent to sign-in.
	pipeline.OnSessionLost(session.HandleSessionLost)
	pipeline.OnSessionLost(app.SessionLost)

	log.Debug(ctx, "client ready", "server_url", cfg.ServerURL, "database", cfg.DatabasePath)

	return app, closeFn, nil
}

func sqliteStores(ctx context.Context, db *sql.DB, secret string, lifetimes tokenstore.Lifetimes) (tokenstore.Store, metadata.Repository, error) {

	meta := metadata.NewSQLiteRepository(db)
	opts := []tokenstore.Option{tokenstore.WithLifetimes(lifetimes)}

	if secret != "" {
		key, err := sealKey(ctx, meta, secret)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, tokenstore.WithSealKey(key))
	}

	return tokenstore.NewSQLiteStore(db, opts...), meta, nil
}

// sealKey derives the credential sealing key, creating the salt on first use.
func sealKey(ctx context.Context, meta metadata.Repository, secret string) ([]byte, error) {

	salt, err := meta.Get(ctx, sealSaltKey)
	if err != nil {
		return nil, fmt.Errorf("load seal salt: %w", err)
	}

	if salt == nil {
		salt, err = cryptox.RandomBytes(16)
		if err != nil {
			return nil, err
		}
		if err := meta.Set(ctx, sealSaltKey, salt); err != nil {
			return nil, fmt.Errorf("save seal salt: %w", err)
		}
	}

	return cryptox.DeriveKey([]byte(secret), salt), nil
}
