package goGuard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func newTestEngine(t *testing.T, storage session.Storage) (*Engine, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	e, err := New().
		WithStorage(storage).
		WithLogger(zap.New(core)).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e, logs
}

// fencedHomeTable sends unrecognized roles to the role-fenced patient area,
// where they can never proceed.
func fencedHomeTable() *route.Table {
	def := route.DefaultDefinition()
	def.DefaultHome = route.NamePatient
	return route.MustNewTable(def)
}

func TestEngineLoginNavigateLogout(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, session.NewMemoryStorage())

	nav, err := e.Navigate(ctx, route.NameDoctor)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if nav.Final != route.NameLogin || nav.First().Kind != RedirectLogin {
		t.Fatalf("anonymous doctor: %+v", nav)
	}

	if err := e.Login(ctx, "tok", &session.User{ID: "7", Username: "dr", Role: route.RoleDoctor}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	nav, err = e.Navigate(ctx, route.NameLogin)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if nav.Final != route.NameDoctor || nav.First().Kind != RedirectRoleHome {
		t.Fatalf("doctor at login: %+v", nav)
	}

	nav, err = e.Navigate(ctx, route.NamePatient)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if nav.Final != route.NameDoctor {
		t.Fatalf("doctor at patient: %+v", nav)
	}

	if err := e.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	s, err := e.Session(ctx)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if s.Authenticated() {
		t.Fatalf("session still authenticated after logout: %+v", s)
	}

	snap := e.MetricsSnapshot()
	if snap.Counters[MetricSessionSaved] != 1 || snap.Counters[MetricSessionCleared] != 1 {
		t.Fatalf("unexpected session counters: %+v", snap.Counters)
	}
	if snap.Counters[MetricDecisionRedirectLogin] != 1 {
		t.Fatalf("expected one login redirect, got %d", snap.Counters[MetricDecisionRedirectLogin])
	}
	if snap.Counters[MetricDecisionRedirectRoleHome] != 2 {
		t.Fatalf("expected two role home redirects, got %d", snap.Counters[MetricDecisionRedirectRoleHome])
	}
	if _, ok := snap.Histograms[MetricNavigateLatency]; !ok {
		t.Fatal("expected navigate latency histogram")
	}
}

func TestEngineLoginRejectsIncompleteSession(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, session.NewMemoryStorage())

	if err := e.Login(ctx, "", &session.User{Role: route.RolePatient}); !errors.Is(err, session.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for empty token, got %v", err)
	}
	if err := e.Login(ctx, "tok", nil); !errors.Is(err, session.ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for nil user, got %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricSessionSaved]; got != 0 {
		t.Fatalf("expected no saved sessions, got %d", got)
	}
}

func TestEngineCorruptSessionIsClearedAndLogged(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	if err := storage.SetMany(ctx, map[string]string{"token": "tok", "user": "{corrupt-json"}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	e, logs := newTestEngine(t, storage)

	nav, err := e.Navigate(ctx, route.NameDashboard)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if nav.First().Kind != RedirectLogin {
		t.Fatalf("corrupt session should be signed out: %+v", nav)
	}

	if _, ok, _ := storage.Get(ctx, "user"); ok {
		t.Fatal("corrupt user slot was not cleared")
	}
	if got := e.MetricsSnapshot().Counters[MetricSessionCorrupt]; got != 1 {
		t.Fatalf("expected one corrupt session, got %d", got)
	}
	if n := logs.FilterMessage("corrupt user record treated as signed out").Len(); n != 1 {
		t.Fatalf("expected one corrupt warning, got %d", n)
	}

	// Cleared, so the next navigation does not report it again.
	if _, err := e.Navigate(ctx, route.NameDashboard); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricSessionCorrupt]; got != 1 {
		t.Fatalf("corrupt record reported twice: %d", got)
	}
}

func TestEngineKeepCorrupt(t *testing.T) {
	ctx := context.Background()
	storage := session.NewMemoryStorage()
	_ = storage.Set(ctx, "user", "[]")

	cfg := DefaultConfig()
	cfg.Session.KeepCorrupt = true
	e, err := New().WithConfig(cfg).WithStorage(storage).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()

	if _, err := e.Navigate(ctx, route.NamePatient); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if _, ok, _ := storage.Get(ctx, "user"); !ok {
		t.Fatal("corrupt user slot should be kept")
	}
}

func TestEngineStorageFailureEvaluatesSignedOut(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	e, err := New().WithRedis(client, "browser-1").WithLogger(zap.New(core)).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()

	if err := e.Login(ctx, "tok", &session.User{ID: "1", Role: route.RoleDoctor}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	mr.Close()

	nav, err := e.Navigate(ctx, route.NameDoctor)
	if err != nil {
		t.Fatalf("Navigate should not surface storage errors: %v", err)
	}
	if nav.Final != route.NameLogin {
		t.Fatalf("unreadable session should be signed out: %+v", nav)
	}
	if got := e.MetricsSnapshot().Counters[MetricSessionStorageFailure]; got != 1 {
		t.Fatalf("expected one storage failure, got %d", got)
	}
	if logs.FilterMessage("session load failed").Len() != 1 {
		t.Fatal("expected storage failure to be logged")
	}

	if _, err := e.Session(ctx); !errors.Is(err, session.ErrStorageUnavailable) {
		t.Fatalf("Session should report storage errors, got %v", err)
	}
}

func TestEngineRedisSessionSurvivesRebuild(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Session.RedisTTL = time.Hour

	first, err := New().WithConfig(cfg).WithRedis(client, "device-a").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := first.Login(ctx, "tok", &session.User{ID: "3", Role: route.RolePatient}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	first.Close()

	if !mr.Exists("gg:device-a:token") || !mr.Exists("gg:device-a:user") {
		t.Fatalf("expected scoped redis keys, have %v", mr.Keys())
	}
	if ttl := mr.TTL("gg:device-a:token"); ttl != time.Hour {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	second, err := New().WithConfig(cfg).WithRedis(client, "device-a").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer second.Close()

	nav, err := second.Navigate(ctx, route.NameLogin)
	if err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if nav.Final != route.NamePatient {
		t.Fatalf("reloaded patient should land home: %+v", nav)
	}

	other, err := New().WithConfig(cfg).WithRedis(client, "device-b").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer other.Close()
	if s, _ := other.Session(ctx); s.Authenticated() {
		t.Fatal("sessions leaked across client ids")
	}
}

func TestEngineUnknownRoleLandsOnDashboard(t *testing.T) {
	ctx := context.Background()
	e, logs := newTestEngine(t, session.NewMemoryStorage())

	if err := e.Login(ctx, "tok", &session.User{ID: "9", Role: "admin"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	for _, name := range []string{route.NameLogin, route.NamePatient, route.NameDoctor, route.NameDashboard, "nowhere"} {
		nav, err := e.Navigate(ctx, name)
		if err != nil {
			t.Fatalf("Navigate(%q) failed: %v", name, err)
		}
		if nav.Final != route.NameDashboard {
			t.Fatalf("Navigate(%q) final = %q, want dashboard (hops %+v)", name, nav.Final, nav.Hops)
		}
	}
	if got := e.MetricsSnapshot().Counters[MetricRedirectLoop]; got != 0 {
		t.Fatalf("unexpected redirect loops: %d", got)
	}
	if logs.FilterMessage("redirect loop").Len() != 0 {
		t.Fatal("unexpected redirect loop log")
	}
}

func TestEngineRedirectLoopIsReported(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	e, err := New().
		WithRoutes(fencedHomeTable()).
		WithStorage(session.NewMemoryStorage()).
		WithLogger(zap.New(core)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()

	if err := e.Login(ctx, "tok", &session.User{ID: "9", Role: "nurse"}); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, err = e.Navigate(ctx, route.NamePatient)
	if !errors.Is(err, ErrRedirectLoop) {
		t.Fatalf("expected ErrRedirectLoop, got %v", err)
	}
	if got := e.MetricsSnapshot().Counters[MetricRedirectLoop]; got != 1 {
		t.Fatalf("expected one loop, got %d", got)
	}
	if logs.FilterMessage("redirect loop").FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Fatal("expected redirect loop error log")
	}

	// The dashboard admits any role, so the same user is not stuck.
	nav, err := e.Navigate(ctx, route.NameDashboard)
	if err != nil || nav.Final != route.NameDashboard {
		t.Fatalf("dashboard: %+v %v", nav, err)
	}
}

func TestEngineBeforeEach(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, session.NewMemoryStorage())

	var calls []Decision
	next := func(d Decision) { calls = append(calls, d) }

	if err := e.BeforeEach(ctx, route.NameDoctor, next); err != nil {
		t.Fatalf("BeforeEach failed: %v", err)
	}
	if len(calls) != 1 || calls[0] != (Decision{Kind: RedirectLogin, Target: route.NameLogin}) {
		t.Fatalf("unexpected continuation calls %+v", calls)
	}

	if err := e.BeforeEach(ctx, calls[0].Target, next); err != nil {
		t.Fatalf("BeforeEach failed: %v", err)
	}
	if len(calls) != 2 || calls[1].Kind != Proceed {
		t.Fatalf("login should proceed: %+v", calls)
	}

	if err := e.BeforeEach(ctx, route.NameLogin, nil); !errors.Is(err, ErrNilContinuation) {
		t.Fatalf("expected ErrNilContinuation, got %v", err)
	}
}

func TestEngineClosed(t *testing.T) {
	ctx := context.Background()
	e, err := New().WithStorage(session.NewMemoryStorage()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	e.Close()
	e.Close()

	if _, err := e.Navigate(ctx, route.NameLogin); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
	if err := e.Login(ctx, "t", &session.User{Role: route.RoleDoctor}); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("expected ErrEngineClosed, got %v", err)
	}
}

func TestBuilderErrors(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrStorageMissing) {
		t.Fatalf("expected ErrStorageMissing, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Navigation.MaxRedirects = 0
	if _, err := New().WithConfig(cfg).WithStorage(session.NewMemoryStorage()).Build(); !errors.Is(err, ErrEngineConfigInvalid) {
		t.Fatalf("expected ErrEngineConfigInvalid, got %v", err)
	}

	b := New().WithStorage(session.NewMemoryStorage())
	e, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer e.Close()
	if _, err := b.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}
