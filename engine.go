package goGuard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goGuard/internal/audit"
	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine ties one session store to one guard. It is the stateful half of the
// package: it owns persistence, serializes navigations, and records metrics
// and audit events. Build it with [New].
//
// Navigations and session writes on one Engine run one at a time, so a
// decision always sees the session as of the moment it started.
type Engine struct {
	config  Config
	guard   *Guard
	store   *session.Store
	metrics *Metrics
	audit   *audit.Dispatcher
	logger  *zap.Logger

	mu     sync.Mutex
	closed atomic.Bool
}

// Close flushes pending audit events. Later calls return ErrEngineClosed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	_ = e.logger.Sync()
}

// AuditDropped returns the number of audit events dropped because the buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Guard returns the stateless guard the Engine decides with.
func (e *Engine) Guard() *Guard {
	return e.guard
}

// Config returns a copy of the Engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

/*
====================================
SESSION LIFECYCLE
====================================
*/

// Login persists token and user as the current session.
func (e *Engine) Login(ctx context.Context, token string, user *session.User) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess := session.Session{Token: token, User: user}
	if err := e.store.Save(ctx, token, user); err != nil {
		if errors.Is(err, session.ErrStorageUnavailable) {
			e.metricInc(MetricSessionStorageFailure)
			e.logger.Error("session save failed", zap.Error(err))
		}
		e.emitAudit(ctx, auditRecord{eventType: auditEventLogin, sess: sess, err: err})
		return err
	}

	e.metricInc(MetricSessionSaved)
	e.logger.Debug("session saved",
		zap.String("user_id", user.ID),
		zap.Stringer("role", user.Role),
	)
	e.emitAudit(ctx, auditRecord{eventType: auditEventLogin, sess: sess, success: true})
	return nil
}

// Logout removes the persisted session.
func (e *Engine) Logout(ctx context.Context) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Clear(ctx); err != nil {
		e.metricInc(MetricSessionStorageFailure)
		e.logger.Error("session clear failed", zap.Error(err))
		e.emitAudit(ctx, auditRecord{eventType: auditEventLogout, err: err})
		return err
	}

	e.metricInc(MetricSessionCleared)
	e.emitAudit(ctx, auditRecord{eventType: auditEventLogout, success: true})
	return nil
}

// Session returns the persisted session. A corrupt user record is reported
// as an unauthenticated session, not an error.
func (e *Engine) Session(ctx context.Context) (session.Session, error) {
	if e.closed.Load() {
		return session.Session{}, ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loadSession(ctx, "")
}

// loadSession reads the store and records corrupt or unreadable state.
// Callers hold e.mu.
func (e *Engine) loadSession(ctx context.Context, navigationID string) (session.Session, error) {
	res, err := e.store.LoadDetailed(ctx)
	if err != nil {
		e.metricInc(MetricSessionStorageFailure)
		e.logger.Error("session load failed",
			zap.String("navigation_id", navigationID),
			zap.Error(err),
		)
		e.emitAudit(ctx, auditRecord{
			eventType:    auditEventStorageFailure,
			navigationID: navigationID,
			err:          err,
		})
		return session.Session{}, err
	}

	if res.Corrupt {
		e.metricInc(MetricSessionCorrupt)
		e.logger.Warn("corrupt user record treated as signed out",
			zap.String("navigation_id", navigationID),
			zap.Bool("cleared", !e.config.Session.KeepCorrupt && res.ClearErr == nil),
			zap.NamedError("reason", res.CorruptErr),
		)
		e.emitAudit(ctx, auditRecord{
			eventType:    auditEventSessionCorrupt,
			navigationID: navigationID,
			err:          res.CorruptErr,
		})
	}
	if res.ClearErr != nil {
		e.metricInc(MetricSessionClearFailed)
		e.logger.Error("corrupt user record not cleared",
			zap.String("navigation_id", navigationID),
			zap.Error(res.ClearErr),
		)
	}

	return res.Session, nil
}

/*
====================================
NAVIGATION
====================================
*/

// Navigate resolves a navigation to name against the persisted session.
//
// The session is read once. Aliases are followed and every guard redirect is
// evaluated as a further decision, up to Config.Navigation.MaxRedirects. A
// session that cannot be read is evaluated as signed out; the storage error
// is logged and counted but not returned.
func (e *Engine) Navigate(ctx context.Context, name string) (Navigation, error) {
	if e.closed.Load() {
		return Navigation{Requested: name}, ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	navID := e.navigationID(ctx)

	sess, _ := e.loadSession(ctx, navID)
	nav, err := e.guard.Resolve(sess, name, e.config.Navigation.MaxRedirects)

	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricNavigateLatency, time.Since(start))
	}

	if err != nil {
		e.recordNavigationError(ctx, navID, sess, name, nav, err)
		return nav, err
	}

	for _, hop := range nav.Hops {
		e.metricInc(decisionMetric(hop.Decision.Kind))
	}
	e.logger.Debug("navigation resolved",
		zap.String("navigation_id", navID),
		zap.String("requested", name),
		zap.String("final", nav.Final),
		zap.Int("hops", len(nav.Hops)),
	)
	e.emitAudit(ctx, auditRecord{
		eventType:    auditEventNavigation,
		navigationID: navID,
		sess:         sess,
		route:        name,
		decision:     nav.First(),
		success:      true,
		metadata:     map[string]string{"final": nav.Final},
	})

	return nav, nil
}

func (e *Engine) recordNavigationError(ctx context.Context, navID string, sess session.Session, name string, nav Navigation, err error) {
	rec := auditRecord{
		navigationID: navID,
		sess:         sess,
		route:        name,
		decision:     nav.First(),
		err:          err,
	}

	switch {
	case errors.Is(err, ErrRedirectLoop):
		e.metricInc(MetricRedirectLoop)
		e.logger.Error("redirect loop",
			zap.String("navigation_id", navID),
			zap.String("requested", name),
			zap.Int("hops", len(nav.Hops)),
			zap.Error(err),
		)
		rec.eventType = auditEventRedirectLoop
	case errors.Is(err, ErrUnknownRoute):
		e.metricInc(MetricUnknownRoute)
		e.logger.Warn("unknown route",
			zap.String("navigation_id", navID),
			zap.String("requested", name),
		)
		rec.eventType = auditEventUnknownRoute
	default:
		e.logger.Error("navigation failed",
			zap.String("navigation_id", navID),
			zap.String("requested", name),
			zap.Error(err),
		)
		rec.eventType = auditEventNavigation
	}

	e.emitAudit(ctx, rec)
}

// Decide evaluates a single navigation step to name without following
// redirects.
func (e *Engine) Decide(ctx context.Context, name string) (Decision, error) {
	if e.closed.Load() {
		return Decision{}, ErrEngineClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sess, _ := e.loadSession(ctx, "")
	d, err := e.guard.DecideName(sess, name)
	if err != nil {
		if errors.Is(err, ErrUnknownRoute) {
			e.metricInc(MetricUnknownRoute)
		}
		return Decision{}, err
	}
	e.metricInc(decisionMetric(d.Kind))
	return d, nil
}

// BeforeEach is a router hook: it decides one navigation step to name and
// hands the decision to next. When it returns nil, next has been called
// exactly once. A redirect is expected to arrive as a new BeforeEach call for
// the substitute route.
func (e *Engine) BeforeEach(ctx context.Context, name string, next func(Decision)) error {
	if next == nil {
		return ErrNilContinuation
	}
	d, err := e.Decide(ctx, name)
	if err != nil {
		return err
	}
	next(d)
	return nil
}

// Table returns the route table the Engine guards.
func (e *Engine) Table() *route.Table {
	return e.guard.Table()
}

func (e *Engine) navigationID(ctx context.Context) string {
	if id, ok := navigationIDFromContext(ctx); ok {
		return id
	}
	return uuid.NewString()
}

func decisionMetric(k DecisionKind) MetricID {
	switch k {
	case RedirectLogin:
		return MetricDecisionRedirectLogin
	case RedirectRoleHome:
		return MetricDecisionRedirectRoleHome
	default:
		return MetricDecisionProceed
	}
}
