package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// --- normalizeVersion ---

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{" v0.1.0\n", "0.1.0"},
		{"", ""},
		{"vv1.0.0", "v1.0.0"}, // only strips one leading v
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- isNewer ---

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"newer major", "0.2.0", "1.0.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older version", "0.3.0", "0.2.0", false},
		{"empty current", "", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev current", "dev", "0.2.0", false},
		{"two part version", "0.2", "0.3.0", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"pre-release suffix ignored", "1.0.0", "1.0.0-rc1", false},
		{"build metadata ignored", "1.0.0", "1.0.1+abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewer(tt.current, tt.latest); got != tt.want {
				t.Errorf("isNewer(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

// --- CheckVersion ---

// newTestServer starts a fake GitHub API answering with status and, on 200,
// the release payload.
func newTestServer(t *testing.T, release Release, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "planka-mcp/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(release)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// withTestServer points the package at ts until the test finishes.
func withTestServer(t *testing.T, ts *httptest.Server) {
	t.Helper()
	origEndpoint, origClient := releaseEndpoint, httpClient
	releaseEndpoint, httpClient = ts.URL, ts.Client()
	t.Cleanup(func() {
		releaseEndpoint, httpClient = origEndpoint, origClient
	})
}

func TestCheckVersion_UpdateAvailable(t *testing.T) {
	release := Release{
		TagName: "v0.3.0",
		HTMLURL: "https://github.com/HendryAvila/planka-mcp/releases/tag/v0.3.0",
	}
	withTestServer(t, newTestServer(t, release, http.StatusOK))

	result, err := CheckVersion(context.Background(), "v0.2.0")
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if !result.UpdateAvailable {
		t.Error("expected UpdateAvailable to be true")
	}
	if result.CurrentVersion != "0.2.0" || result.LatestVersion != "0.3.0" {
		t.Errorf("versions = %q -> %q", result.CurrentVersion, result.LatestVersion)
	}
	if result.ReleaseURL != release.HTMLURL {
		t.Errorf("ReleaseURL = %q", result.ReleaseURL)
	}
}

func TestCheckVersion_AlreadyLatest(t *testing.T) {
	withTestServer(t, newTestServer(t, Release{TagName: "v0.2.0"}, http.StatusOK))

	result, err := CheckVersion(context.Background(), "0.2.0")
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if result.UpdateAvailable {
		t.Error("expected no update when already at latest")
	}
}

func TestCheckVersion_DevVersion(t *testing.T) {
	withTestServer(t, newTestServer(t, Release{TagName: "v9.9.9"}, http.StatusOK))

	result, err := CheckVersion(context.Background(), "dev")
	if err != nil {
		t.Fatalf("CheckVersion: %v", err)
	}
	if result.UpdateAvailable {
		t.Error("dev builds should never report updates")
	}
}

func TestCheckVersion_APIErrorStatus(t *testing.T) {
	withTestServer(t, newTestServer(t, Release{}, http.StatusForbidden))

	result, err := CheckVersion(context.Background(), "v0.2.0")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want 403", err)
	}
	if result == nil || result.CurrentVersion != "0.2.0" || result.UpdateAvailable {
		t.Errorf("result = %+v", result)
	}
}

func TestCheckVersion_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()
	withTestServer(t, ts)

	result, err := CheckVersion(context.Background(), "v0.2.0")
	if err == nil {
		t.Error("expected error from closed server")
	}
	if result.UpdateAvailable {
		t.Error("expected no update on network error")
	}
}

func TestCheckVersion_Canceled(t *testing.T) {
	withTestServer(t, newTestServer(t, Release{TagName: "v1.0.0"}, http.StatusOK))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckVersion(ctx, "v0.1.0"); err == nil {
		t.Error("expected error for canceled context")
	}
}
