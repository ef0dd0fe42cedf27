package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ozen/internal/config"
	"ozen/internal/deps"
)

// CheckSidecar verifies that a model sidecar answers GET /health.
// It uses a 5-second timeout and a single attempt.
func CheckSidecar(ctx context.Context, name, baseURL string) Result {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%v)", err)}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(base, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("%s health check failed (%d)", base, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: base + " reachable"}
}

// CheckToken reports whether a credential is configured without revealing it.
func CheckToken(name, token string) Result {
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing (set HF_TOKEN or huggingface.token)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckWritableTarget verifies that path can be created: the path itself when
// it exists, otherwise its nearest existing ancestor.
func CheckWritableTarget(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	candidate := filepath.Clean(path)
	for {
		if _, err := os.Stat(candidate); err == nil {
			break
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			break
		}
		candidate = parent
	}
	result := CheckDirectoryAccess(name, candidate)
	if result.Passed && candidate != filepath.Clean(path) {
		result.Detail = fmt.Sprintf("%s (will be created under %s)", path, candidate)
	}
	return result
}

// CheckSystemDeps evaluates the executables required by the configured mode.
// Both the status command and the process command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func summarizeNetError(base string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return base + " health check timed out (sidecar unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return base + " health check timed out (sidecar unreachable)"
	}
	return fmt.Sprintf("%s unreachable (%v)", base, err)
}
