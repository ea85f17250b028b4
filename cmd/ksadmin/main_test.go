package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/digicoders-git/ksadmin/internal/config"
	"github.com/digicoders-git/ksadmin/internal/storage"
)

// fakeBackend serves the admin login and profile endpoints.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Identifier string `json:"identifier"`
			Secret     string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"identity": map[string]string{"identifier": req.Identifier, "displayName": "Asha", "subjectId": "a1"},
			"token":    "tok-1",
		})
	})
	mux.HandleFunc("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"subjectId": "a1"}) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func isolate(t *testing.T, apiURL string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KSADMIN_API_URL", apiURL)
	t.Setenv("KSADMIN_STORAGE", "")
	t.Setenv("KSADMIN_STORAGE_DIR", "")
	t.Setenv("KSADMIN_REDIS_ADDR", "")
	t.Setenv("KSADMIN_LOGOUT_ON_UNAUTHORIZED", "")
	t.Setenv("KSADMIN_RATE_LIMIT", "")
	t.Setenv(secretEnv, "")
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if out != "ksadmin dev\n" {
		t.Errorf("output = %q", out)
	}
}

func TestWhoamiLoggedOut(t *testing.T) {
	isolate(t, fakeBackend(t).URL)
	out, err := execute(t, "", "whoami")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	if out != "Not logged in.\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	home := isolate(t, fakeBackend(t).URL)

	out, err := execute(t, "pw\n", "login", "--identifier", "admin@ksmedial.in")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !strings.Contains(out, "Logged in as Asha.") {
		t.Errorf("login output = %q", out)
	}

	// The session is on disk under the default storage dir.
	kv := storage.NewFile(filepath.Join(home, ".ksadmin", "session"))
	if _, err := kv.Get(t.Context(), "session"); err != nil {
		t.Fatalf("session not persisted: %v", err)
	}

	out, err = execute(t, "", "whoami", "--verify")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	for _, want := range []string{"Asha <admin@ksmedial.in>", "subject: a1", "verified: a1"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami output missing %q: %q", want, out)
		}
	}

	out, err = execute(t, "", "logout")
	if err != nil || out != "Logged out.\n" {
		t.Errorf("logout = %q, %v", out, err)
	}
	out, err = execute(t, "", "logout")
	if err != nil || out != "Already logged out.\n" {
		t.Errorf("second logout = %q, %v", out, err)
	}
}

func TestLoginSecretFromEnv(t *testing.T) {
	isolate(t, fakeBackend(t).URL)
	t.Setenv(secretEnv, "pw")

	if _, err := execute(t, "", "login", "--identifier", "admin"); err != nil {
		t.Fatalf("login error: %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	isolate(t, fakeBackend(t).URL)

	_, err := execute(t, "wrong\n", "login", "--identifier", "admin")
	if err == nil || !strings.Contains(err.Error(), "HTTP 401") {
		t.Fatalf("error = %v, want HTTP 401", err)
	}
	out, _ := execute(t, "", "whoami")
	if out != "Not logged in.\n" {
		t.Errorf("failed login left a session: %q", out)
	}
}

func TestLoginRequiresIdentifier(t *testing.T) {
	isolate(t, fakeBackend(t).URL)
	if _, err := execute(t, "pw\n", "login"); err == nil {
		t.Fatal("expected error without --identifier")
	}
}

func TestWhoamiVerifyRejectedLogsOut(t *testing.T) {
	srv := fakeBackend(t)
	isolate(t, srv.URL)
	if _, err := execute(t, "pw\n", "login", "--identifier", "admin"); err != nil {
		t.Fatalf("login error: %v", err)
	}

	// Point at a backend that rejects every token.
	reject := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer reject.Close()
	t.Setenv("KSADMIN_API_URL", reject.URL)

	out, err := execute(t, "", "whoami", "--verify")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	if !strings.Contains(out, "Session rejected by server; logged out.") {
		t.Errorf("output = %q", out)
	}
	out, _ = execute(t, "", "whoami")
	if out != "Not logged in.\n" {
		t.Errorf("session survived 401: %q", out)
	}
}

func TestRedisStorageSharesSession(t *testing.T) {
	mr := miniredis.RunT(t)
	isolate(t, fakeBackend(t).URL)
	t.Setenv("KSADMIN_STORAGE", "redis")
	t.Setenv("KSADMIN_REDIS_ADDR", mr.Addr())

	if _, err := execute(t, "pw\n", "login", "--identifier", "admin"); err != nil {
		t.Fatalf("login error: %v", err)
	}
	if !mr.Exists("ksadmin:session") {
		t.Fatal("session not written to redis")
	}
	out, err := execute(t, "", "whoami")
	if err != nil || !strings.Contains(out, "subject: a1") {
		t.Errorf("whoami = %q, %v", out, err)
	}
}

func TestReadSecret(t *testing.T) {
	t.Setenv(secretEnv, "")
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"line", "hunter2\nextra\n", "hunter2", false},
		{"crlf", "hunter2\r\n", "hunter2", false},
		{"no newline", "hunter2", "hunter2", false},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSecret(strings.NewReader(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("readSecret() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("readSecret() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Setenv(secretEnv, "from-env")
	if got, _ := readSecret(strings.NewReader("ignored\n")); got != "from-env" {
		t.Errorf("readSecret() with env = %q", got)
	}
}

func TestOpenStorage(t *testing.T) {
	log := zap.NewNop()

	mem, closeMem := openStorage(&config.Config{Storage: config.StorageMemory}, log)
	if _, ok := mem.(*storage.Memory); !ok || closeMem != nil {
		t.Errorf("memory backend = %T", mem)
	}

	dir := t.TempDir()
	file, _ := openStorage(&config.Config{Storage: config.StorageFile, StorageDir: dir}, log)
	if f, ok := file.(*storage.File); !ok || f.Dir() != dir {
		t.Errorf("file backend = %T", file)
	}

	// An unreachable Redis still yields a store.
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()
	rs, closeRedis := openStorage(&config.Config{Storage: config.StorageRedis, RedisAddr: addr, RedisPrefix: "x:"}, log)
	if _, ok := rs.(*storage.Redis); !ok || closeRedis == nil {
		t.Errorf("redis backend = %T", rs)
	}
	if closeRedis != nil {
		_ = closeRedis()
	}
}
