package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	cleanup := func() { _ = ln.Close() }
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port, cleanup
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("blackbox tests build the binary; skipped in -short mode")
	}
	root := projectRootFromThisFile(t)
	binPath := filepath.Join(t.TempDir(), "webvideo")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/webvideo")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func createContentDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(filepath.Join(p, "index.html"), []byte("<html><body>"+n+"</body></html>"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return dir
}

type serverProc struct {
	cmd  *exec.Cmd
	base string // http base URL, e.g. http://127.0.0.1:18080
}

func startServer(t *testing.T, bin string, port int, extra ...string) *serverProc {
	t.Helper()
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	args := append([]string{"serve", "--renderer", "synthetic", "--addr", fmt.Sprintf(":%d", port)}, extra...)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	sp := &serverProc{cmd: cmd, base: base}
	t.Cleanup(func() { _ = cmd.Process.Kill() })
	return sp
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func waitReady(t *testing.T, sp *serverProc) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, _ := get(t, sp.base+"/readyz")
		if resp.StatusCode == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("/readyz did not become ready in time; last=%d", resp.StatusCode)
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	dir := createContentDir(t, "main")
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, port, "--content-dir", dir)

	waitReady(t, sp)

	resp, body := get(t, sp.base+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status %d %s", resp.StatusCode, string(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("/status content-type=%s", ct)
	}
	var st struct {
		Panels []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"panels"`
		Relays []string `json:"relays"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, string(body))
	}
	if len(st.Panels) != 1 || st.Panels[0].Name != "main" || !strings.HasSuffix(st.Panels[0].URL, "/main/index.html") {
		t.Fatalf("unexpected panels %+v", st.Panels)
	}
	if len(st.Relays) != 1 {
		t.Fatalf("expected one relay, got %v", st.Relays)
	}

	resp, body = get(t, sp.base+"/screen.png")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("/screen.png %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, body = postJSON(t, sp.base+"/panels/main/reload", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("reload %d %s", resp.StatusCode, string(body))
	}

	resp, body = get(t, sp.base+"/metrics")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("webvideo_http_requests_total")) {
		t.Fatalf("/metrics missing request counter")
	}
}

func TestBlackbox_UnknownPanel_404(t *testing.T) {
	bin := buildBinary(t)
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, port)

	resp, body := postJSON(t, sp.base+"/panels/missing/reload", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", resp.StatusCode, string(body))
	}
}

func TestBlackbox_ConfigFile(t *testing.T) {
	bin := buildBinary(t)
	port, release := findFreePort(t)
	release()
	cfg := filepath.Join(t.TempDir(), "webvideo.toml")
	toml := `
url_template = "about:blank#{name}"

[screen]
width = 320
height = 200

[[panels]]
name = "left"
width = 0.5
height = 1.0

[[panels]]
name = "right"
x = 0.5
width = 0.5
height = 1.0
`
	if err := os.WriteFile(cfg, []byte(toml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	sp := startServer(t, bin, port, "--config", cfg)
	waitReady(t, sp)

	_, body := get(t, sp.base+"/status")
	var st struct {
		Panels []struct {
			Name  string `json:"name"`
			Width int    `json:"width"`
		} `json:"panels"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v", err)
	}
	if len(st.Panels) != 2 || st.Panels[0].Name != "left" || st.Panels[0].Width != 160 {
		t.Fatalf("unexpected panels %+v", st.Panels)
	}
}
