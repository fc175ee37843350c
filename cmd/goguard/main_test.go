package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testConfig(t *testing.T, environ map[string]string) cliConfig {
	t.Helper()
	cfg, err := loadConfig("", environ)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	return cfg
}

func runCLI(t *testing.T, cfg cliConfig, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, cfg, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeRoutes(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write routes: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := testConfig(t, map[string]string{})
	if cfg.LogLevel != "warn" || cfg.ClientID != "cli" || cfg.RedisPrefix != "gg" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}

	cfg = testConfig(t, map[string]string{"GOGUARD_ROUTES": "/etc/routes.yaml", "GOGUARD_LOG_LEVEL": " DEBUG "})
	if cfg.Routes != "/etc/routes.yaml" || cfg.LogLevel != "debug" {
		t.Fatalf("environment not applied %+v", cfg)
	}
}

func TestLintBuiltinTable(t *testing.T) {
	code, out, _ := runCLI(t, testConfig(t, map[string]string{}), "lint")
	if code != exitOK {
		t.Fatalf("exit %d, output:\n%s", code, out)
	}
	if !strings.Contains(out, "ok: 6 routes, 0 warnings") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLintRejectsLoopingLogin(t *testing.T) {
	path := writeRoutes(t, `
routes:
  - name: login
    path: /login
    requires_auth: true
  - name: patient
    path: /patient
    requires_auth: true
    roles: [patient]
  - name: doctor
    path: /doctor
    requires_auth: true
    roles: [doctor]
`)
	cfg := testConfig(t, map[string]string{"GOGUARD_ROUTES": path})
	code, out, _ := runCLI(t, cfg, "lint")
	if code != exitInvalid {
		t.Fatalf("expected exit %d, got %d:\n%s", exitInvalid, code, out)
	}
	if !strings.Contains(out, "requires authentication") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestDecide(t *testing.T) {
	cfg := testConfig(t, map[string]string{})

	tests := []struct {
		name  string
		args  []string
		code  int
		final string
	}{
		{"anonymous doctor", []string{"-target", "doctor"}, exitOK, "final: login"},
		{"doctor at login", []string{"-token", "t", "-user", `{"role":"doctor"}`, "-target", "login"}, exitOK, "final: doctor"},
		{"patient at doctor", []string{"-token", "t", "-user", `{"role":"patient"}`, "-target", "doctor"}, exitOK, "final: patient"},
		{"corrupt user", []string{"-token", "t", "-user", "{corrupt-json", "-target", "dashboard"}, exitOK, "final: login"},
		{"unknown role at patient", []string{"-token", "t", "-user", `{"role":"nurse"}`, "-target", "patient"}, exitOK, "final: dashboard"},
		{"unknown role at login", []string{"-token", "t", "-user", `{"role":"admin"}`, "-target", "login"}, exitOK, "final: dashboard"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, cfg, append([]string{"decide"}, tc.args...)...)
			if code != tc.code {
				t.Fatalf("exit %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tc.code, out, errOut)
			}
			if tc.final != "" && !strings.Contains(out, tc.final) {
				t.Fatalf("expected %q in output:\n%s", tc.final, out)
			}
		})
	}
}

func TestDecideReportsRedirectLoop(t *testing.T) {
	path := writeRoutes(t, `
default_home: patient
routes:
  - name: login
    path: /login
  - name: patient
    path: /patient
    requires_auth: true
    roles: [patient]
  - name: doctor
    path: /doctor
    requires_auth: true
    roles: [doctor]
`)
	cfg := testConfig(t, map[string]string{"GOGUARD_ROUTES": path})
	code, out, errOut := runCLI(t, cfg, "decide", "-token", "t", "-user", `{"role":"nurse"}`, "-target", "patient")
	if code != exitInvalid {
		t.Fatalf("exit %d, want %d\nstdout:\n%s\nstderr:\n%s", code, exitInvalid, out, errOut)
	}
}

func TestDecideReadsRedisSession(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.Set("gg:browser-7:token", "tok")
	mr.Set("gg:browser-7:user", `{"user_id":"7","role":"doctor"}`)

	cfg := testConfig(t, map[string]string{
		"REDIS_ADDR":        mr.Addr(),
		"GOGUARD_CLIENT_ID": "browser-7",
	})
	code, out, errOut := runCLI(t, cfg, "decide", "-target", "patient")
	if code != exitOK {
		t.Fatalf("exit %d\n%s\n%s", code, out, errOut)
	}
	if !strings.Contains(out, "final: doctor") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t, map[string]string{})
	if code, _, _ := runCLI(t, cfg); code != exitUsage {
		t.Fatalf("no args: exit %d", code)
	}
	if code, _, _ := runCLI(t, cfg, "bogus"); code != exitUsage {
		t.Fatalf("unknown command: exit %d", code)
	}
	if code, _, _ := runCLI(t, cfg, "decide"); code != exitUsage {
		t.Fatalf("missing target: exit %d", code)
	}
	cfg.LogLevel = "loud"
	if code, _, _ := runCLI(t, cfg, "lint"); code != exitUsage {
		t.Fatalf("bad log level: exit %d", code)
	}
}
