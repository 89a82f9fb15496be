package testutil

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Seed is one task written to the server's config file.
type Seed struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

// Server is a `taskboard serve` process started for one test.
type Server struct {
	URL        string
	ConfigPath string

	cmd    *exec.Cmd
	mu     sync.Mutex
	output bytes.Buffer
}

func (s *Server) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.Write(p)
}

// Output returns everything the server has written so far.
func (s *Server) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

// StartServer runs the binary's serve command on a free local port with a
// config file holding seed, and waits until `taskboard ping` succeeds. The
// process is interrupted when the test finishes.
func StartServer(t *testing.T, seed ...Seed) *Server {
	t.Helper()

	addr := freeAddr(t)
	configPath := writeConfig(t, addr, seed)

	s := &Server{
		URL:        "http://" + addr,
		ConfigPath: configPath,
	}
	s.cmd = exec.Command(GetTaskboardBinaryPath(), "serve", "--config", configPath)
	s.cmd.Stdout = s
	s.cmd.Stderr = s
	require.NoError(t, s.cmd.Start(), "failed to start taskboard serve")

	t.Cleanup(func() {
		_ = s.cmd.Process.Signal(syscall.SIGTERM)
		done := make(chan struct{})
		go func() {
			_ = s.cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = s.cmd.Process.Kill()
			<-done
		}
		if t.Failed() {
			t.Logf("server output:\n%s", s.Output())
		}
	})

	deadline := time.Now().Add(10 * time.Second)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := Run(ctx, "", "ping", "--server", s.URL)
		cancel()
		if err == nil {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never became ready: %v\n%s", err, s.Output())
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Run executes the binary with args and stdin and returns its combined
// output. The command's error is returned alongside the output.
func Run(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, GetTaskboardBinaryPath(), args...)
	cmd.Env = append(os.Environ(), "TASKBOARD_CONFIG=", "TASKBOARD_SERVER=", "TASKBOARD_ADDR=", "NO_COLOR=1")
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func freeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to reserve a port")
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func writeConfig(t *testing.T, addr string, seed []Seed) string {
	t.Helper()

	doc := map[string]any{
		"server": map[string]any{
			"addr": addr,
			"seed": seed,
		},
		"client": map[string]any{
			"server": "http://" + addr,
		},
	}
	data, err := yaml.Marshal(doc)
	require.NoError(t, err, "failed to encode config")

	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644), fmt.Sprintf("failed to write %s", path))
	return path
}
