package goGuard

import (
	"fmt"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. A Builder is single-use.
type Builder struct {
	config Config
	table  *route.Table

	storage  session.Storage
	redis    redis.UniversalClient
	clientID string

	auditSink AuditSink
	logger    *zap.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig] and the built-in route table.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRoutes sets the route table. A nil table selects [route.Default].
func (b *Builder) WithRoutes(table *route.Table) *Builder {
	b.table = table
	return b
}

// WithStorage sets the session slot backend. It takes precedence over WithRedis.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis persists the session in Redis under keys scoped by clientID,
// one client per browser or device.
func (b *Builder) WithRedis(client redis.UniversalClient, clientID string) *Builder {
	b.redis = client
	b.clientID = clientID
	return b
}

// WithAuditSink sets the audit destination. It only takes effect when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the Engine's logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Navigate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderReused
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineConfigInvalid, err)
	}

	storage := b.storage
	if storage == nil && b.redis != nil {
		storage = session.NewRedisStorage(b.redis, cfg.Session.RedisPrefix, b.clientID, cfg.Session.RedisTTL)
	}
	if storage == nil {
		return nil, ErrStorageMissing
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := session.NewStore(storage, session.Options{
		TokenKey:    cfg.Session.TokenKey,
		UserKey:     cfg.Session.UserKey,
		KeepCorrupt: cfg.Session.KeepCorrupt,
	})

	e := &Engine{
		config:  cfg,
		guard:   NewGuard(b.table),
		store:   store,
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		logger: logger.Named("goguard"),
	}

	b.built = true
	return e, nil
}
