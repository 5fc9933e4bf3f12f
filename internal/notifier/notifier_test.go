package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/prosper/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

// withConfigDir points the user config dir at a temp dir for the test.
func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, exe string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := withConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil || dir != trayDir {
		t.Fatalf("GetTrayAppConfigDir() = %q, %v, want %q", dir, err, trayDir)
	}

	if err := os.MkdirAll(trayDir, 0755); err != nil {
		t.Fatal(err)
	}
	custom := "/custom/prosper/dir"
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := GetTrayAppConfigDir(); dir != custom {
		t.Errorf("with settings got %q, want %q", dir, custom)
	}

	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if dir, _ := GetTrayAppConfigDir(); dir != trayDir {
		t.Errorf("with broken settings got %q, want default", dir)
	}
}

func TestParseLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "8080|123|s3cret\n", false},
		{"old two part format", "8080|123", true},
		{"garbage", "invalid", true},
		{"port not numeric", "http|123|s", true},
		{"port out of range", "70000|123|s", true},
		{"port zero", "0|123|s", true},
		{"pid not numeric", "8080|abc|s", true},
		{"empty secret", "8080|123| ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLockfile(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLockfile(%q) error = %v, wantErr %v", tt.content, err, tt.wantErr)
			}
			if !tt.wantErr && (got.port != 8080 || got.pid != 123 || got.secret != "s3cret") {
				t.Errorf("parseLockfile() = %+v", got)
			}
		})
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	lockfile := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	withProcess(t, "prosper-tray")
	if _, err := findAndValidateTrayProcess(lockfile); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("missing lockfile: err = %v, want ErrTrayNotRunning", err)
	}

	if err := os.WriteFile(lockfile, []byte("8080|42|abc"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := findAndValidateTrayProcess(lockfile); err != nil {
		t.Errorf("valid tray: err = %v", err)
	}

	withProcess(t, "bash")
	if _, err := findAndValidateTrayProcess(lockfile); err == nil {
		t.Error("expected error for a foreign process")
	}

	withProcess(t, "")
	if _, err := findAndValidateTrayProcess(lockfile); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("dead pid: err = %v, want ErrTrayNotRunning", err)
	}
}

// startTray writes a lockfile for a fake tray served by handler.
func startTray(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())

	dir := filepath.Join(withConfigDir(t), constants.TrayAppIdentifier)
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	lock := fmt.Sprintf("%d|%d|secret-value", port, os.Getpid())
	if err := os.WriteFile(filepath.Join(dir, constants.NotifierLockfileName), []byte(lock), 0600); err != nil {
		t.Fatal(err)
	}
	withProcess(t, "prosper-tray")
}

func TestNotify(t *testing.T) {
	var got WebhookPayload
	var secret string
	startTray(t, func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get(constants.TraySecretHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	})

	n := New()
	if !n.Available() {
		t.Fatal("Available() = false with a running tray")
	}
	if err := n.Notify(t.Context(), "Done", "Walk completed"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if secret != "secret-value" {
		t.Errorf("secret header = %q", secret)
	}
	if got.Title != "Done" || got.Text != "Walk completed" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}
}

func TestNotifyRetries(t *testing.T) {
	var calls atomic.Int32
	startTray(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	n := New()
	n.retryDelay = time.Millisecond
	if err := n.Notify(t.Context(), "", "x"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestNotifyGivesUp(t *testing.T) {
	var calls atomic.Int32
	startTray(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusForbidden)
	})

	n := New()
	n.retryDelay = time.Millisecond
	if err := n.Notify(t.Context(), "", "x"); err == nil {
		t.Fatal("Notify() should fail")
	}
	if int(calls.Load()) != constants.NotifyMaxRetries {
		t.Errorf("server saw %d calls, want %d", calls.Load(), constants.NotifyMaxRetries)
	}
}
