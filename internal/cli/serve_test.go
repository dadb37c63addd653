package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// startServe runs the serve command in the background and returns its base
// URL, a stop func and the exit code channel.
func startServe(t *testing.T, args ...string) (string, context.CancelFunc, <-chan int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	addrc := make(chan string, 1)
	var out, errOut syncBuffer
	e := &env{in: strings.NewReader(""), out: &out, errOut: &errOut, lookup: lookupMap(nil),
		onListen: func(addr string) { addrc <- addr }}
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, append([]string{"serve", "--addr", "127.0.0.1:0", "--log-level", "error"}, args...), e)
	}()
	select {
	case addr := <-addrc:
		return "http://" + addr, cancel, done
	case code := <-done:
		cancel()
		t.Fatalf("serve exited early with %d: %s", code, errOut.String())
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatalf("serve did not start")
	}
	return "", cancel, done
}

func waitReadyz(t *testing.T, base, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if string(b) == want {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("readyz never reported %q", want)
}

func waitExit(t *testing.T, done <-chan int) int {
	t.Helper()
	select {
	case code := <-done:
		return code
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not exit")
		return -1
	}
}

func TestServe_PredictAndShutdown(t *testing.T) {
	base, stop, done := startServe(t, "--model-uri", fixture)
	waitReadyz(t, base, "ready")

	resp, err := http.Post(base+"/predict", "application/json", bytes.NewBufferString(femaleFirst))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(b), `"survival_status":"Survived"`) {
		t.Fatalf("status=%d body=%s", resp.StatusCode, b)
	}

	stop()
	if code := waitExit(t, done); code != 0 {
		t.Fatalf("exit code %d", code)
	}
}

func TestServe_LoadFailureExits(t *testing.T) {
	ctx := context.Background()
	var out, errOut syncBuffer
	e := &env{in: strings.NewReader(""), out: &out, errOut: &errOut, lookup: lookupMap(nil)}
	missing := filepath.Join(t.TempDir(), "missing")
	code := run(ctx, []string{"--addr", "127.0.0.1:0", "--log-level", "error", "--model-uri", missing}, e)
	if code != 1 || !strings.Contains(errOut.String(), "model load failed") {
		t.Fatalf("code=%d errOut=%q", code, errOut.String())
	}
}

func TestServe_LoadFailureKeepsServing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	base, stop, done := startServe(t, "--model-uri", missing, "--exit-on-load-failure=false", "--retry-after-seconds", "17")
	defer func() {
		stop()
		waitExit(t, done)
	}()
	waitReadyz(t, base, "failed")

	resp, err := http.Post(base+"/predict", "application/json", bytes.NewBufferString(femaleFirst))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable || resp.Header.Get("Retry-After") != "17" {
		t.Fatalf("status=%d retry-after=%q", resp.StatusCode, resp.Header.Get("Retry-After"))
	}
}
