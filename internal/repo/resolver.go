// Package repo resolves an analysis source to a local checkout: either a
// validated local path or a shallow clone of a git URL.
package repo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// cloneTimeout bounds the one remote operation in the pipeline
const cloneTimeout = 120 * time.Second

// Resolver turns a source argument into a local repository root
type Resolver struct {
	source  string
	token   string
	tempDir string
}

// NewResolver creates a resolver for a local path or git URL, with an
// optional auth token for private HTTPS remotes
func NewResolver(source, token string) *Resolver {
	return &Resolver{source: source, token: token}
}

// Resolve returns the local repository root, cloning first when the source
// is a URL. The returned path is guaranteed to contain config/routes.rb.
func (r *Resolver) Resolve() (string, error) {
	if isURL(r.source) {
		return r.clone()
	}
	return r.validateLocal(r.source)
}

// Cleanup removes any temporary clone directory
func (r *Resolver) Cleanup() {
	if r.tempDir != "" {
		os.RemoveAll(r.tempDir)
		r.tempDir = ""
	}
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "git@") ||
		strings.HasPrefix(source, "git://")
}

// clone performs a shallow clone into a uniquely named temp directory
func (r *Resolver) clone() (string, error) {
	r.tempDir = filepath.Join(os.TempDir(), "railscan-"+uuid.NewString())

	url := r.source
	if r.token != "" && strings.HasPrefix(url, "https://") && !strings.Contains(url, "@") {
		url = strings.Replace(url, "https://", "https://"+r.token+"@", 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cloneTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, r.tempDir)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("git clone timed out after %s", cloneTimeout)
	}
	if err != nil {
		if _, lookErr := exec.LookPath("git"); lookErr != nil {
			return "", fmt.Errorf("git is not installed or not in PATH")
		}
		return "", fmt.Errorf("git clone failed: %s", strings.TrimSpace(string(output)))
	}

	return r.validateLocal(r.tempDir)
}

// validateLocal checks that a path exists and looks like a Rails project
func (r *Resolver) validateLocal(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
		return "", fmt.Errorf("path does not exist: %s", abs)
	}
	routesFile := filepath.Join(abs, "config", "routes.rb")
	if _, statErr := os.Stat(routesFile); statErr != nil {
		return "", fmt.Errorf("not a Rails project (no config/routes.rb): %s", abs)
	}
	return abs, nil
}
