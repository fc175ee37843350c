package goGuard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goGuard/session"
)

// Config defines the Engine's tunables.
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	Session    SessionConfig
	Navigation NavigationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the persisted session slots.
type SessionConfig struct {
	TokenKey string
	UserKey  string
	// KeepCorrupt leaves a malformed user record in storage instead of
	// deleting it on load.
	KeepCorrupt bool
	// RedisPrefix and RedisTTL apply when the Builder creates a RedisStorage.
	RedisPrefix string
	RedisTTL    time.Duration
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig controls redirect resolution.
type NavigationConfig struct {
	// MaxRedirects bounds how many guard redirects one navigation follows
	// before it is reported as a loop.
	MaxRedirects int
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls asynchronous audit event delivery.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TokenKey:    session.DefaultTokenKey,
			UserKey:     session.DefaultUserKey,
			RedisPrefix: "gg",
		},
		Navigation: NavigationConfig{
			MaxRedirects: DefaultMaxRedirects,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

const maxRedirectBudget = 16

// Validate checks the configuration for values the Engine cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Session.TokenKey) == "" {
		return errors.New("Session TokenKey must be set")
	}
	if strings.TrimSpace(c.Session.UserKey) == "" {
		return errors.New("Session UserKey must be set")
	}
	if c.Session.TokenKey == c.Session.UserKey {
		return errors.New("Session TokenKey and UserKey must differ")
	}
	if c.Session.RedisTTL < 0 {
		return errors.New("Session RedisTTL must be >= 0")
	}

	if c.Navigation.MaxRedirects < 1 {
		return errors.New("Navigation MaxRedirects must be >= 1")
	}
	if c.Navigation.MaxRedirects > maxRedirectBudget {
		return fmt.Errorf("Navigation MaxRedirects must be <= %d", maxRedirectBudget)
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

// LintWarning is a non-fatal configuration finding.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Code
	}
	return out
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if c.Session.KeepCorrupt {
		ws = append(ws, LintWarning{
			Code:    "keep_corrupt_session",
			Message: "corrupt user records are kept and re-parsed on every navigation",
		})
	}
	if c.Navigation.MaxRedirects == 1 {
		ws = append(ws, LintWarning{
			Code:    "single_redirect_budget",
			Message: "a redirect to login followed by a role-home redirect exceeds a budget of 1",
		})
	}
	if !c.Audit.Enabled {
		ws = append(ws, LintWarning{
			Code:    "audit_disabled",
			Message: "navigation decisions are not audited",
		})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_blocking",
			Message: "a slow audit sink blocks navigation",
		})
	}
	if !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:    "metrics_disabled",
			Message: "navigation counters are not collected",
		})
	}
	if c.Session.RedisTTL > 0 && c.Session.RedisTTL < time.Minute {
		ws = append(ws, LintWarning{
			Code:    "redis_ttl_short",
			Message: "sessions persisted in Redis expire in under a minute",
		})
	}

	return ws
}
