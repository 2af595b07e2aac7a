package updater

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadVersion reads the VERSION file in dir. An absent or empty file yields
// fallback.
func LoadVersion(dir, fallback string) string {
	data, err := os.ReadFile(filepath.Join(dir, "VERSION"))
	if err != nil {
		return fallback
	}
	if v := strings.TrimSpace(string(data)); v != "" {
		return v
	}
	return fallback
}

// LoadAuthors reads author names from the AUTHORS file in dir. Lines look
// like "- Jane Doe (@jane) - contributor"; only the name is kept. Headings and
// HTML comments are skipped. Without any names fallback is returned.
func LoadAuthors(dir, fallback string) []string {
	data, err := os.ReadFile(filepath.Join(dir, "AUTHORS"))
	if err != nil {
		return []string{fallback}
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "<!--") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "-*"))
		if i := strings.Index(line, " ("); i >= 0 {
			line = line[:i]
		}
		if i := strings.Index(line, " - "); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	if len(names) == 0 {
		return []string{fallback}
	}
	return names
}

// About is the content of the About notification.
type About struct {
	Version    string
	Status     Status
	Authors    []string
	Repository string
}

// String renders the About text.
func (a About) String() string {
	var b strings.Builder
	b.WriteString("LM Studio Tray Monitor\n")
	b.WriteString("Version: " + VersionLabel(a.Version, a.Status) + "\n")
	if len(a.Authors) > 0 {
		b.WriteString("Authors: " + strings.Join(a.Authors, ", ") + "\n")
	}
	b.WriteString(a.Repository)
	return b.String()
}
