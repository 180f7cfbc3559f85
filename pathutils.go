package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var osSeparator = string(os.PathSeparator)

// NormalizePathForInternal converts any OS path into the canonical internal
// representation: forward slashes, cleaned components, no trailing slash.
// Graph keys and dependency full names are always in this form.
func NormalizePathForInternal(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(filepath.Clean(p))
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimRight(s, "/")
	}
	return s
}

// DenormalizePathForOS converts an internal forward-slash path back to the
// OS-native representation for os.* calls.
func DenormalizePathForOS(internal string) string {
	if runtime.GOOS != "windows" || internal == "" {
		return internal
	}
	return filepath.FromSlash(internal)
}

// NormalizeGlobPattern normalizes glob pattern separators to forward slashes.
func NormalizeGlobPattern(pattern string) string {
	if runtime.GOOS != "windows" || pattern == "" {
		return pattern
	}
	return strings.ReplaceAll(pattern, "\\", "/")
}

func StandardiseDirPath(cwd string) string {
	if strings.HasSuffix(cwd, osSeparator) {
		return cwd
	}
	return cwd + osSeparator
}

// ResolveAbsoluteCwd makes cwd absolute against the process working directory.
func ResolveAbsoluteCwd(cwd string) string {
	if filepath.IsAbs(cwd) {
		return StandardiseDirPath(filepath.Clean(cwd))
	}
	binaryExecDir, _ := os.Getwd()
	return StandardiseDirPath(filepath.Join(binaryExecDir, cwd))
}

// RelativeToRoot returns filePath relative to root in internal form. Paths
// outside of root are returned unchanged.
func RelativeToRoot(filePath string, root string) string {
	rootNorm := NormalizePathForInternal(root)
	fileNorm := NormalizePathForInternal(filePath)
	if rootNorm == "" {
		return fileNorm
	}
	if fileNorm == rootNorm {
		return "."
	}
	prefix := rootNorm
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if strings.HasPrefix(fileNorm, prefix) {
		return strings.TrimPrefix(fileNorm, prefix)
	}
	return fileNorm
}

// JoinWithCwd joins a relative path onto cwd, leaving absolute paths alone.
func JoinWithCwd(cwd string, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}
