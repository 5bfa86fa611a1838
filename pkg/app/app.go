// pkg/app/app.go

// Package app builds the collaborators shared by the command-line tools from
// the environment.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/cleaner"
	"github.com/mconlon17/vivo-person-ingest/pkg/config"
	"github.com/mconlon17/vivo-person-ingest/pkg/connector"
	"github.com/mconlon17/vivo-person-ingest/pkg/exceptions"
	"github.com/mconlon17/vivo-person-ingest/pkg/extract"
	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
	"github.com/mconlon17/vivo-person-ingest/pkg/logging"
	"github.com/mconlon17/vivo-person-ingest/pkg/lookup"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/store"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

// Extract sources
const (
	SourceFile      = "file"
	SourceSnowflake = "snowflake"
)

// App owns the configuration, logger and open connections of one process
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	KB        *store.KnowledgeBase
	Positions *vivo.PositionTypes

	factory *connector.ConnectorFactory
	redis   *connector.RedisConnector
	closers []func() error
}

// New loads the configuration from envFiles and the environment, then opens
// the knowledge base
func New(ctx context.Context, envFiles ...string) (*App, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, WithCode(ExitValidation, err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, WithCode(ExitValidation, err)
	}

	positions, err := vivo.LoadPositionTypes(cfg.Ingest.PositionTypesFile)
	if err != nil {
		return nil, WithCode(ExitValidation, err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Positions: positions,
		factory:   connector.NewConnectorFactory(cfg, logger),
	}

	triples, err := a.openTripleStore(ctx)
	if err != nil {
		a.Close()
		return nil, WithCode(ExitStore, err)
	}
	a.KB = store.NewKnowledgeBase(triples, cfg.Ingest.URIPrefix, positions, logger.Named("knowledge-base"))
	return a, nil
}

func (a *App) openTripleStore(ctx context.Context) (store.TripleStore, error) {
	switch a.Config.KBBackend {
	case config.BackendMemory:
		var seed []rdf.Triple
		if a.Config.KBSeedFile != "" {
			triples, err := store.LoadTriples(a.Config.KBSeedFile)
			if err != nil {
				return nil, err
			}
			seed = triples
		}
		a.Logger.Info("Using in-memory knowledge base", zap.Int("seedTriples", len(seed)))
		return store.NewMemoryStore(seed...), nil

	default:
		conn, err := a.factory.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(conn, a.Config.Postgres.Schema, a.Config.Postgres.Table)
		a.closers = append(a.closers, pg.Close)
		if err := pg.EnsureTable(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
}

// Lookups are the keyed stores consulted during validation
type Lookups struct {
	Contact            lookup.Store
	Privacy            lookup.Store
	DeptExceptions     lookup.Store
	UFIDExceptions     lookup.Store
	URIExceptions      lookup.Store
	PositionExceptions lookup.Store
}

func (l *Lookups) records() []lookup.Store {
	return []lookup.Store{l.Contact, l.Privacy}
}

func (l *Lookups) lists() []lookup.Store {
	return []lookup.Store{l.DeptExceptions, l.UFIDExceptions, l.URIExceptions, l.PositionExceptions}
}

// Registry builds the exception registry from the four lists
func (l *Lookups) Registry(ctx context.Context) (*exceptions.Registry, error) {
	return exceptions.Load(ctx, l.DeptExceptions, l.UFIDExceptions, l.URIExceptions, l.PositionExceptions)
}

// Close closes every store
func (l *Lookups) Close() error {
	var errs []error
	for _, s := range append(l.records(), l.lists()...) {
		if s != nil {
			errs = append(errs, s.Close())
		}
	}
	return errors.Join(errs...)
}

// OpenLookups opens the lookup stores from the configured backend
func (a *App) OpenLookups(ctx context.Context) (*Lookups, error) {
	if a.Config.Lookup.Backend == config.LookupRedis {
		client, err := a.Redis(ctx)
		if err != nil {
			return nil, WithCode(ExitStore, err)
		}
		prefix := client.KeyPrefix()
		return &Lookups{
			Contact:            lookup.NewRedisRecords(client, prefix, lookup.Contact),
			Privacy:            lookup.NewRedisRecords(client, prefix, lookup.Privacy),
			DeptExceptions:     lookup.NewRedisSet(client, prefix, lookup.DeptExceptions),
			UFIDExceptions:     lookup.NewRedisSet(client, prefix, lookup.UFIDExceptions),
			URIExceptions:      lookup.NewRedisSet(client, prefix, lookup.URIExceptions),
			PositionExceptions: lookup.NewRedisSet(client, prefix, lookup.PositionExceptions),
		}, nil
	}
	return a.FileLookups()
}

// FileLookups loads the lookup stores from the files under LOOKUP_DIR,
// whatever the configured backend
func (a *App) FileLookups() (*Lookups, error) {
	lc := a.Config.Lookup
	path := func(name string) string { return filepath.Join(lc.Dir, name) }

	l := &Lookups{}
	var err error
	if l.Contact, err = lookup.OpenRecords(lookup.Contact, path(lc.ContactFile), lc.KeyColumn); err != nil {
		return nil, WithCode(ExitValidation, err)
	}
	if l.Privacy, err = lookup.OpenRecords(lookup.Privacy, path(lc.PrivacyFile), lc.KeyColumn); err != nil {
		return nil, WithCode(ExitValidation, err)
	}

	lists := []struct {
		dst  *lookup.Store
		name string
		file string
	}{
		{&l.DeptExceptions, lookup.DeptExceptions, lc.DeptExceptionsFile},
		{&l.UFIDExceptions, lookup.UFIDExceptions, lc.UFIDExceptionsFile},
		{&l.URIExceptions, lookup.URIExceptions, lc.URIExceptionsFile},
		{&l.PositionExceptions, lookup.PositionExceptions, lc.PositionExceptionsFile},
	}
	for _, list := range lists {
		s, err := lookup.OpenList(list.name, path(list.file))
		if err != nil {
			return nil, WithCode(ExitValidation, err)
		}
		*list.dst = s
	}
	return l, nil
}

// PushLookups copies file-backed lookups into redis and returns the number
// of entries written per store
func (a *App) PushLookups(ctx context.Context) (map[string]int, error) {
	src, err := a.FileLookups()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	client, err := a.Redis(ctx)
	if err != nil {
		return nil, WithCode(ExitStore, err)
	}

	pushed := make(map[string]int)
	for _, s := range src.records() {
		n, err := lookup.PushRecords(ctx, client, client.KeyPrefix(), s)
		if err != nil {
			return nil, WithCode(ExitStore, err)
		}
		pushed[s.Name()] = n
	}
	for _, s := range src.lists() {
		n, err := lookup.PushList(ctx, client, client.KeyPrefix(), s)
		if err != nil {
			return nil, WithCode(ExitStore, err)
		}
		pushed[s.Name()] = n
	}
	return pushed, nil
}

// Redis returns the shared redis connection, connecting on first use
func (a *App) Redis(ctx context.Context) (*connector.RedisConnector, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	if a.Config.Redis.URL == "" {
		return nil, errors.New("REDIS_URL is not set")
	}
	client, err := a.factory.CreateRedisConnector(ctx)
	if err != nil {
		return nil, err
	}
	a.redis = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

// Source opens the HR extract. input is a file path for SourceFile and is
// ignored for SourceSnowflake.
func (a *App) Source(ctx context.Context, kind, input string) (extract.Source, error) {
	switch kind {
	case SourceFile, "":
		return extract.NewFileSource(input), nil
	case SourceSnowflake:
		conn, err := a.factory.CreateSnowflakeConnector(ctx)
		if err != nil {
			return nil, WithCode(ExitStore, err)
		}
		a.closers = append(a.closers, conn.Close)
		if err := conn.Validate(); err != nil {
			return nil, WithCode(ExitStore, err)
		}
		sf := a.Config.Snowflake
		return extract.NewSnowflakeSource(conn, sf.PositionQuery, sf.BatchSize), nil
	default:
		return nil, WithCode(ExitUsage, fmt.Errorf("unknown source %q", kind))
	}
}

// Validator builds the field validator over lookups
func (a *App) Validator(ctx context.Context, lookups *Lookups, harvestedAt time.Time) (*ingest.Validator, error) {
	registry, err := lookups.Registry(ctx)
	if err != nil {
		return nil, WithCode(ExitStore, err)
	}
	depts, ids, refs, labels := registry.Sizes()
	a.Logger.Info("Exception lists loaded",
		zap.Int("deptPatterns", depts),
		zap.Int("identifiers", ids),
		zap.Int("references", refs),
		zap.Int("labels", labels))

	fc, err := cleaner.NewFieldCleaner(a.Config.Ingest.DefaultAreaCode, a.Logger.Named("cleaner"))
	if err != nil {
		return nil, WithCode(ExitValidation, err)
	}

	v, err := ingest.NewValidator(ingest.ValidatorConfig{
		Registry:    registry,
		Finder:      a.KB,
		Contact:     lookups.Contact,
		Privacy:     lookups.Privacy,
		Positions:   a.Positions,
		Cleaner:     fc,
		HarvestedAt: harvestedAt,
		HarvestedBy: a.Config.Ingest.HarvestSource,
	}, a.Logger.Named("validator"))
	if err != nil {
		return nil, WithCode(ExitValidation, err)
	}
	return v, nil
}

// Close releases every connection opened by the app, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("Close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
