package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmstudio-tray/lmstray/internal/config"
	"github.com/lmstudio-tray/lmstray/internal/models"
	"github.com/lmstudio-tray/lmstray/internal/monitor"
	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/resolver"
	"github.com/lmstudio-tray/lmstray/internal/updater"
)

var statusCmd = &cobra.Command{
	Use:   "status [model]",
	Short: "Print daemon, desktop app and model status once",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := ""
		running, info, err := config.IsTrayRunning()
		if err != nil {
			return fmt.Errorf("failed to check tray status: %w", err)
		}
		if len(args) > 0 {
			model = args[0]
		} else if info != nil && running {
			model = info.Model
		}

		cwd, _ := os.Getwd()
		c := newClassifier(resolver.New(), model, cwd, 0)
		res := c.Poll(cmd.Context(), "")

		report := statusReport{
			Poll:       res,
			Model:      c.Model,
			LMS:        toolPath(c.Tools.LMS()),
			Llmster:    toolPath(c.Tools.Llmster()),
			TrayAlive:  running,
			Instance:   info,
			QueryLimit: c.QueryTimeout,
		}
		report.write(os.Stdout, painter{styled: stdoutIsTerminal()})
		return nil
	},
}

func newClassifier(tools monitor.Tools, model, workDir string, queryTimeout time.Duration) *monitor.Classifier {
	if model == "" {
		model = monitor.NoModel
	}
	if queryTimeout <= 0 {
		queryTimeout = monitor.DefaultQueryTimeout
	}
	return &monitor.Classifier{
		Tools:        tools,
		Inspector:    process.NewInspector(process.SystemLister{}),
		Runner:       monitor.ExecRunner{},
		App:          monitor.DesktopMatcher,
		Model:        model,
		WorkDir:      workDir,
		QueryTimeout: queryTimeout,
	}
}

func toolPath(p string, ok bool) string {
	if !ok {
		return ""
	}
	return p
}

func checkForUpdate(ctx context.Context, version string) updater.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return updater.NewChecker(version).Check(ctx)
}

type statusReport struct {
	Poll       monitor.PollResult
	Model      string
	LMS        string
	Llmster    string
	TrayAlive  bool
	Instance   *models.InstanceInfo
	QueryLimit time.Duration
}

func (r statusReport) write(w io.Writer, p painter) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", p.paint(styleLabel, fmt.Sprintf("%-14s", label)), value)
	}

	fmt.Fprintln(w, p.paint(styleBrand, "LM Studio status"))
	row("Daemon:", p.paint(targetStyle(r.Poll.Daemon), r.Poll.Daemon.Indicator()+" "+r.Poll.Daemon.Label()))
	row("Desktop App:", p.paint(targetStyle(r.Poll.App), r.Poll.App.Indicator()+" "+r.Poll.App.Label()))

	model := string(r.Poll.Model)
	if r.Poll.Stale {
		model = "UNKNOWN (query exceeded " + r.QueryLimit.String() + ")"
	}
	row("Model status:", p.paint(modelStyle(r.Poll.Model), model))
	if r.Model != monitor.NoModel {
		row("Expected:", r.Model)
	}
	if len(r.Poll.Loaded) > 0 {
		row("Loaded:", strings.Join(r.Poll.Loaded, ", "))
	}

	row("lms:", orMissing(r.LMS, p))
	row("llmster:", orMissing(r.Llmster, p))

	if r.TrayAlive && r.Instance != nil {
		row("Tray:", fmt.Sprintf("running (PID %d, since %s)", r.Instance.PID, r.Instance.StartedAt.Local().Format(time.DateTime)))
		if r.Instance.LogFile != "" {
			row("Log:", r.Instance.LogFile)
		}
	} else {
		row("Tray:", p.paint(styleHint, "not running"))
	}
}

func orMissing(path string, p painter) string {
	if path == "" {
		return p.paint(styleHint, "not found")
	}
	return path
}
