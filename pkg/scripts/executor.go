// Package scripts resolves and runs the predefined executable scripts whose
// stdout becomes JavaScript injected through content.execute_script.
//
// The script directory is operator-controlled via FOXMCP_EXT_SCRIPTS; script
// names arrive from MCP clients and are untrusted. Every precondition below
// is checked before a child process is spawned.
package scripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/foxmcp/foxmcp/pkg/errors"
	"github.com/foxmcp/foxmcp/pkg/logger"
)

// ExecTimeout is the wall-clock limit for one script invocation.
const ExecTimeout = 30 * time.Second

// nameRe is the only shape a script name may take. No separators, no
// whitespace, nothing outside this set.
var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Executor runs named scripts from a single configured directory.
type Executor struct {
	dir     string
	timeout time.Duration
}

// NewExecutor creates an executor rooted at dir. An empty dir produces an
// executor on which every Run fails not_configured; the feature is disabled,
// not broken.
func NewExecutor(dir string) *Executor {
	return &Executor{dir: dir, timeout: ExecTimeout}
}

// Configured reports whether a script directory is set.
func (e *Executor) Configured() bool {
	return e.dir != ""
}

// Run validates name and argsJSON, executes the script, and returns its
// stdout. The preconditions are enforced in order; any failure prevents the
// child process from being spawned.
func (e *Executor) Run(ctx context.Context, name, argsJSON string) (string, error) {
	path, err := e.resolve(name)
	if err != nil {
		return "", err
	}

	args, err := parseArgs(argsJSON)
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Dir = e.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debugw("Running predefined script", "script", name, "args", args)
	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", errors.NewExecutionFailedError(
				fmt.Sprintf("script %s exceeded the %s timeout", name, e.timeout), runCtx.Err())
		}
		return "", errors.NewExecutionFailedError(
			fmt.Sprintf("script %s failed: %s", name, strings.TrimSpace(stderr.String())), err)
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", errors.NewExecutionFailedError(
			fmt.Sprintf("script %s produced non-UTF-8 output", name), nil)
	}
	return string(out), nil
}

// resolve applies the security preconditions and returns the absolute real
// path of the script.
func (e *Executor) resolve(name string) (string, error) {
	if e.dir == "" {
		return "", errors.NewNotConfiguredError("FOXMCP_EXT_SCRIPTS is not set; predefined scripts are disabled")
	}
	if !nameRe.MatchString(name) {
		return "", errors.NewInvalidNameError(fmt.Sprintf("script name %q contains disallowed characters", name))
	}
	if strings.Contains(name, "..") {
		return "", errors.NewInvalidNameError(fmt.Sprintf("script name %q contains a parent-directory sequence", name))
	}

	realDir, err := filepath.EvalSymlinks(e.dir)
	if err != nil {
		return "", errors.NewNotConfiguredError(fmt.Sprintf("script directory %s is not accessible", e.dir))
	}
	realDir, err = filepath.Abs(realDir)
	if err != nil {
		return "", errors.NewNotConfiguredError(fmt.Sprintf("script directory %s is not accessible", e.dir))
	}

	joined := filepath.Join(realDir, name)
	realPath, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", errors.NewNotFoundError(fmt.Sprintf("script %s not found", name), err)
	}
	// Containment after symlink resolution: a link escaping the directory is
	// treated the same as a traversal in the name itself.
	if realPath != realDir && !strings.HasPrefix(realPath, realDir+string(filepath.Separator)) {
		return "", errors.NewInvalidNameError(fmt.Sprintf("script %s resolves outside the script directory", name))
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return "", errors.NewNotFoundError(fmt.Sprintf("script %s not found", name), err)
	}
	if !info.Mode().IsRegular() {
		return "", errors.NewNotFoundError(fmt.Sprintf("script %s is not a regular file", name), nil)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", errors.NewNotExecutableError(fmt.Sprintf("script %s is not executable", name))
	}
	return realPath, nil
}

// parseArgs decodes argsJSON as a JSON array of strings. The empty string is
// equivalent to an empty array; any other shape is rejected.
func parseArgs(argsJSON string) ([]string, error) {
	if strings.TrimSpace(argsJSON) == "" {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(argsJSON), &decoded); err != nil {
		return nil, errors.NewInvalidArgsError("script_args is not valid JSON", err)
	}
	list, ok := decoded.([]any)
	if !ok {
		return nil, errors.NewInvalidArgsError("script_args must be a JSON array of strings", nil)
	}
	args := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.NewInvalidArgsError(
				fmt.Sprintf("script_args[%d] is not a string", i), nil)
		}
		args = append(args, s)
	}
	return args, nil
}
