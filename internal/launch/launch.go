// Package launch implements the phonemcp-launch bootstrap: normalize the
// working directory to the launcher's own location, prefer an isolated
// runtime directory when one is present, and hand off to the phonemcp
// server binary. The launcher produces no output of its own and exits
// with whatever code the server exits with.
package launch

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// DefaultTarget is the server binary the launcher delegates to.
	DefaultTarget = "phonemcp"

	// RuntimeDirName is the optional isolated runtime directory, checked
	// relative to the launcher's own directory.
	RuntimeDirName = "runtime"

	// exitNotFound mirrors the shell convention for an unresolvable
	// command.
	exitNotFound = 127
)

// ExecutableDir returns the directory containing the running executable,
// with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// ActivateRuntime returns a copy of environ with the runtime bin
// directory prepended to PATH when dir contains a runtime directory.
// Without one, environ is returned unchanged.
func ActivateRuntime(dir string, environ []string) []string {
	info, err := os.Stat(filepath.Join(dir, RuntimeDirName))
	if err != nil || !info.IsDir() {
		return environ
	}

	binDir := filepath.Join(dir, RuntimeDirName, "bin")
	env := make([]string, 0, len(environ)+1)
	found := false
	for _, kv := range environ {
		if strings.HasPrefix(kv, "PATH=") {
			env = append(env, "PATH="+binDir+string(os.PathListSeparator)+kv[len("PATH="):])
			found = true
			continue
		}
		env = append(env, kv)
	}
	if !found {
		env = append(env, "PATH="+binDir)
	}
	return env
}

// ResolveTarget locates the server binary: the runtime bin directory
// wins, then a sibling of the launcher, then the ambient PATH. When
// nothing resolves, the bare name is returned and the spawn fails the
// way the OS reports it.
func ResolveTarget(dir, target string) string {
	candidates := []string{
		filepath.Join(dir, RuntimeDirName, "bin", target),
		filepath.Join(dir, target),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	if found, err := exec.LookPath(target); err == nil {
		return found
	}
	return target
}

// ExitCode maps a process wait error to the launcher's exit code. The
// delegated process's code passes through untransformed.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return exitNotFound
}

// Run executes the bootstrap sequence and returns the process exit code.
func Run(stdin io.Reader, stdout, stderr io.Writer) int {
	dir, err := ExecutableDir()
	if err != nil {
		return exitNotFound
	}
	if err := os.Chdir(dir); err != nil {
		return exitNotFound
	}

	env := ActivateRuntime(dir, os.Environ())
	target := ResolveTarget(dir, DefaultTarget)

	cmd := exec.Command(target)
	cmd.Env = env
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return ExitCode(cmd.Run())
}
