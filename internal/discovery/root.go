package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

const defaultStoreDirName = ".claude"

// ResolveRoot returns the log-store root directory. If explicit is
// non-empty it is used verbatim (after WSL translation); otherwise the
// platform user-config location is used: `$HOME/.claude` on Linux/macOS,
// with the same fallback on WSL where `$HOME` resolves under `/home`.
func ResolveRoot(explicit string) (string, error) {
	path := explicit
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", unreadableRoot(path, err)
		}
		path = filepath.Join(home, defaultStoreDirName)
	}

	path = translateWSLPath(path)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", notFound(path, err)
	}
	if errors.Is(err, os.ErrPermission) {
		return "", permissionDenied(path, err)
	}
	if err != nil {
		return "", unreadableRoot(path, err)
	}
	if !info.IsDir() {
		return "", unreadableRoot(path, errors.New("not a directory"))
	}
	return path, nil
}

var wslMountPattern = regexp.MustCompile(`^/mnt/([a-zA-Z])(/.*)?$`)

// IsWSL reports whether the process is running under Windows Subsystem
// for Linux, detected by the kernel release string carrying "microsoft"
// (the same signal the reference implementation's `is_wsl()` uses).
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	data, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}

// translateWSLPath resolves a `/mnt/<drive>/...` path to its WSL host
// form unchanged (WSL already mounts Windows drives there); it exists so
// callers can pass either a Windows-style root pointer or a native one
// and get a normalized path. On non-WSL platforms it is the identity.
func translateWSLPath(path string) string {
	if !IsWSL() {
		return path
	}
	if wslMountPattern.MatchString(path) {
		return path
	}
	// A bare Windows-style drive path like "C:\Users\x\.claude" passed
	// through an environment variable gets remapped into the /mnt form.
	if len(path) >= 2 && path[1] == ':' {
		drive := strings.ToLower(string(path[0]))
		rest := strings.ReplaceAll(path[2:], `\`, "/")
		return "/mnt/" + drive + rest
	}
	return path
}
