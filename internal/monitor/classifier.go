package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/resolver"
)

// DefaultQueryTimeout bounds the model listing query. It stays well under the
// poll interval so a slow CLI never stalls the loop for long.
const DefaultQueryTimeout = 800 * time.Millisecond

// NoModel is the placeholder used when no expected model was given.
const NoModel = "no-model-passed"

// Tools locates the executables the classifier and sequencer work with.
// *resolver.Resolver implements it.
type Tools interface {
	LMS() (string, bool)
	Llmster() (string, bool)
	Desktop() (string, bool)
	AppImageDirs(extra ...string) []string
	AppImage(dirs []string) (string, bool)
}

// DesktopMatcher recognises the LM Studio desktop app's main process. A
// service-mode instance (lm-studio --run-as-service, minimized to the tray)
// matches too and therefore counts as the app running.
var DesktopMatcher = process.AppMatcher{
	Executable: resolver.DesktopName,
	InstallPaths: []string{
		"/usr/bin/lm-studio",
		"/usr/lib/lm-studio/lm-studio",
		"/opt/LM Studio/lm-studio",
		"/opt/lm-studio/lm-studio",
	},
	HelperMarker: "--type=",
}

// Classifier maps process table and filesystem observations to statuses.
// It holds no state between calls.
type Classifier struct {
	Tools        Tools
	Inspector    *process.Inspector
	Runner       Runner
	App          process.AppMatcher
	Model        string
	WorkDir      string
	QueryTimeout time.Duration
}

// Daemon classifies the headless llmster daemon.
func (c *Classifier) Daemon() Status {
	if _, ok := c.Tools.Llmster(); !ok {
		return StatusNotFound
	}
	if c.Inspector.IsRunning(resolver.LlmsterName) {
		return StatusRunning
	}
	return StatusStopped
}

// DesktopPIDs returns the desktop app's root process IDs.
func (c *Classifier) DesktopPIDs() []int {
	return c.Inspector.RootPIDs(c.App)
}

// DesktopApp classifies the desktop app.
func (c *Classifier) DesktopApp() Status {
	if len(c.DesktopPIDs()) > 0 {
		return StatusRunning
	}
	if c.packageInstalled() {
		return StatusStopped
	}
	if _, ok := c.AppImage(); ok {
		return StatusStopped
	}
	return StatusNotFound
}

// PackageLauncher returns the launcher of a package-manager install.
func (c *Classifier) PackageLauncher() (string, bool) {
	if p, ok := c.Tools.Desktop(); ok {
		return p, true
	}
	return "", false
}

// AppImage returns a self-contained desktop app image, if one is found.
func (c *Classifier) AppImage() (string, bool) {
	return c.Tools.AppImage(c.Tools.AppImageDirs(c.WorkDir))
}

func (c *Classifier) packageInstalled() bool {
	if _, ok := c.PackageLauncher(); ok {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.queryTimeout())
	defer cancel()
	res, err := c.Runner.Run(ctx, "dpkg", "-s", resolver.DesktopName)
	if err != nil {
		log.Debug().Err(err).Msg("dpkg query failed")
		return false
	}
	return res.ExitCode == 0 && strings.Contains(res.Stdout, "install ok installed")
}

// queryTimeout bounds every command a poll runs.
func (c *Classifier) queryTimeout() time.Duration {
	if c.QueryTimeout <= 0 {
		return DefaultQueryTimeout
	}
	return c.QueryTimeout
}

// Poll runs one full classification pass. prev is returned as the model
// status when the model query times out.
func (c *Classifier) Poll(ctx context.Context, prev ModelStatus) PollResult {
	res := PollResult{
		Daemon: c.Daemon(),
		App:    c.DesktopApp(),
	}
	model, loaded, err := c.ModelStatus(ctx, res.Daemon)
	if errors.Is(err, ErrTimeout) {
		log.Debug().Msg("Timeout in lms ps, keeping previous status")
		res.Model = prev
		res.Stale = true
		return res
	}
	res.Model = model
	res.Loaded = loaded
	return res
}

// ModelStatus classifies the expected model given the daemon's status. It
// returns ErrTimeout when the listing query exceeds QueryTimeout.
func (c *Classifier) ModelStatus(ctx context.Context, daemon Status) (ModelStatus, []string, error) {
	lms, ok := c.Tools.LMS()
	if !ok {
		return ModelMonitorOnly, nil, nil
	}
	if daemon != StatusRunning {
		return ModelFail, nil, nil
	}

	qctx, cancel := context.WithTimeout(ctx, c.queryTimeout())
	defer cancel()

	out, err := c.Runner.Run(qctx, lms, "ps")
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", nil, err
		}
		log.Error().Err(err).Msg("Error in status check")
		return ModelFail, nil, nil
	}
	if out.ExitCode != 0 {
		return ModelFail, nil, nil
	}

	text := strings.TrimSpace(out.Stdout)
	switch {
	case text == "":
		return ModelWarn, nil, nil
	case strings.Contains(text, c.Model):
		return ModelOK, nil, nil
	default:
		return ModelInfo, ParseLoadedModels(text), nil
	}
}

// ParseLoadedModels extracts model identifiers from an `lms ps` listing: the
// first line is a header, each following line carries the identifier in its
// second column.
func ParseLoadedModels(listing string) []string {
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	if len(lines) < 2 {
		return nil
	}
	var out []string
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			continue
		case len(fields) > 1:
			out = append(out, fields[1])
		default:
			out = append(out, "Unknown")
		}
	}
	return out
}
