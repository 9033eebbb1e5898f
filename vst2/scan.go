package vst2

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Libraries holds paths of plugin files grouped by their directory.
type Libraries map[string][]string

// DefaultScanPaths returns directories where plugins are installed on
// current platform. VST_PATH environment variable is added on windows.
func DefaultScanPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"~/Library/Audio/Plug-Ins/VST",
			"/Library/Audio/Plug-Ins/VST",
		}
	case "windows":
		paths := []string{
			"C:\\Program Files (x86)\\Steinberg\\VSTPlugins",
			"C:\\Program Files\\Steinberg\\VSTPlugins",
		}
		if env := os.Getenv("VST_PATH"); env != "" {
			paths = append(paths, env)
		}
		return paths
	}
	return nil
}

// Extension returns file extension of plugins on current platform.
func Extension() string {
	switch runtime.GOOS {
	case "darwin":
		return ".vst"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// Scan walks provided paths and collects plugin files. Unreadable paths
// are skipped.
func Scan(paths ...string) Libraries {
	libs := make(Libraries)
	ext := Extension()
	for _, path := range uniquePaths(paths) {
		filepath.Walk(path, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if strings.HasSuffix(info.Name(), ext) {
				dir := filepath.Dir(path)
				libs[dir] = append(libs[dir], path)
				// darwin plugins are bundles
				if info.IsDir() {
					return filepath.SkipDir
				}
			}
			return nil
		})
	}
	return libs
}

func uniquePaths(paths []string) []string {
	u := make([]string, 0, len(paths))
	m := make(map[string]struct{})
	for _, p := range paths {
		if _, ok := m[p]; !ok {
			m[p] = struct{}{}
			u = append(u, p)
		}
	}
	return u
}

func (libs Libraries) String() string {
	var b strings.Builder
	dirs := make([]string, 0, len(libs))
	for dir := range libs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		fmt.Fprintf(&b, "\t%v\n", dir)
		for _, path := range libs[dir] {
			fmt.Fprintf(&b, "\t\t%v\n", filepath.Base(path))
		}
	}
	return b.String()
}
