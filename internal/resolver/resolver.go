// Package resolver locates the LM Studio executables on disk.
package resolver

import (
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executable names.
const (
	LMSName      = "lms"
	LlmsterName  = "llmster"
	DesktopName  = "lm-studio"
	AppImageExt  = ".appimage"
	lmstudioHome = ".lmstudio"
)

// Resolver finds tool paths. The filesystem and PATH lookups are swappable so
// the fallback order can be exercised without touching the real system.
type Resolver struct {
	Home     string
	LookPath func(file string) (string, error)
	Stat     func(name string) (fs.FileInfo, error)
	ReadDir  func(name string) ([]fs.DirEntry, error)

	// ExtraAppImageDirs are user-configured image directories searched after
	// the built-in ones.
	ExtraAppImageDirs []string
}

// New returns a Resolver rooted at the current user's home directory.
func New() *Resolver {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot determine home directory")
	}
	return &Resolver{
		Home:     home,
		LookPath: exec.LookPath,
		Stat:     os.Stat,
		ReadDir:  os.ReadDir,
	}
}

// LMSPath is the well-known install path of the lms CLI.
func (r *Resolver) LMSPath() string {
	return filepath.Join(r.Home, lmstudioHome, "bin", LMSName)
}

// LlmsterRoot is the directory holding versioned llmster installs.
func (r *Resolver) LlmsterRoot() string {
	return filepath.Join(r.Home, lmstudioHome, LlmsterName)
}

// LMS resolves the lms CLI: the well-known install path when it is an
// executable file, otherwise the first hit on PATH.
func (r *Resolver) LMS() (string, bool) {
	if p := r.LMSPath(); r.isExecutable(p) {
		return p, true
	}
	if p, err := r.LookPath(LMSName); err == nil {
		return p, true
	}
	return "", false
}

// Llmster resolves the daemon binary: PATH first, then a scan of
// ~/.lmstudio/llmster/<version>/ for an executable llmster (directly or under
// bin/). Among scanned candidates the lexicographically greatest path wins.
// This is a plain string comparison, not semantic versioning: "v2" sorts after
// "v10".
func (r *Resolver) Llmster() (string, bool) {
	if p, err := r.LookPath(LlmsterName); err == nil {
		return p, true
	}

	candidates := r.LlmsterCandidates()
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return candidates[len(candidates)-1], true
}

// LlmsterCandidates lists every executable llmster under the versioned install
// root. Listing errors yield no candidates.
func (r *Resolver) LlmsterCandidates() []string {
	root := r.LlmsterRoot()
	entries, err := r.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("dir", root).Msg("Cannot scan llmster install root")
		}
		return nil
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, p := range []string{
			filepath.Join(root, e.Name(), LlmsterName),
			filepath.Join(root, e.Name(), "bin", LlmsterName),
		} {
			if r.isExecutable(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// AppImageDirs are the directories searched for a self-contained desktop app
// image, in order. extra directories (e.g. the working directory) are appended.
func (r *Resolver) AppImageDirs(extra ...string) []string {
	dirs := []string{
		filepath.Join(r.Home, "Apps"),
		filepath.Join(r.Home, "Applications"),
		filepath.Join(r.Home, "Downloads"),
		"/opt",
	}
	dirs = append(dirs, r.ExtraAppImageDirs...)
	for _, d := range extra {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// AppImage returns the first LM Studio AppImage found in dirs. Unreadable
// directories are skipped.
func (r *Resolver) AppImage(dirs []string) (string, bool) {
	for _, dir := range dirs {
		entries, err := r.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !IsAppImageName(e.Name()) {
				continue
			}
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// IsAppImageName reports whether name looks like an LM Studio AppImage.
func IsAppImageName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, AppImageExt) &&
		strings.Contains(lower, "lm") &&
		strings.Contains(lower, "studio")
}

// Desktop resolves the package-installed desktop app launcher on PATH.
func (r *Resolver) Desktop() (string, bool) {
	p, err := r.LookPath(DesktopName)
	if err != nil {
		return "", false
	}
	return p, true
}

func (r *Resolver) isExecutable(path string) bool {
	info, err := r.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}
