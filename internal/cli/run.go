package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/buildinfo"
	"github.com/lmstudio-tray/lmstray/internal/config"
	"github.com/lmstudio-tray/lmstray/internal/models"
	"github.com/lmstudio-tray/lmstray/internal/monitor"
	"github.com/lmstudio-tray/lmstray/internal/notify"
	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/resolver"
	"github.com/lmstudio-tray/lmstray/internal/tray"
	"github.com/lmstudio-tray/lmstray/internal/tui"
	"github.com/lmstudio-tray/lmstray/internal/updater"
)

const appTitle = "LM Studio Tray"

type runOptions struct {
	model           string
	dir             string
	debug           bool
	autoStartDaemon bool
	gui             bool
	foreground      bool
}

// renderNotifier is what the foreground and tray front ends provide.
type renderNotifier interface {
	monitor.Renderer
	monitor.Notifier
}

// fanout delivers each notification to several notifiers.
type fanout []monitor.Notifier

func (f fanout) Notify(title, body string) {
	for _, n := range f {
		n.Notify(title, body)
	}
}

func runTray(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	dir, err := workDir(opts.dir)
	if err != nil {
		return err
	}

	level := "info"
	if opts.debug {
		level = "debug"
	}
	logOpts := config.LogOptions{WorkDir: dir, Level: level}
	if opts.debug && !opts.foreground {
		logOpts.Console = os.Stderr
	}
	closer, logPath, err := config.SetupLogging(logOpts)
	if err != nil {
		return err
	}
	defer closer.Close()

	settings, err := config.LoadSettings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings, using defaults")
		settings = models.NewSettings()
	}

	version := updater.LoadVersion(dir, buildinfo.Version)
	model := opts.model
	if model == "" {
		model = monitor.NoModel
	}
	log.Info().
		Str("version", version).
		Str("model", model).
		Str("dir", dir).
		Bool("foreground", opts.foreground).
		Msg("Starting LM Studio tray")

	terminateOtherInstances()

	if err := config.SaveInstanceInfo(models.NewInstanceInfo(os.Getpid(), model, dir, logPath)); err != nil {
		log.Warn().Err(err).Msg("Failed to write instance info")
	}
	defer func() {
		if err := config.RemoveInstanceInfo(); err != nil {
			log.Warn().Err(err).Msg("Failed to remove instance info")
		}
	}()

	desktop := notify.NewDesktop(appTitle)
	desktop.SetEnabled(settings.Notifications.Enabled)

	res := resolver.New()
	res.ExtraAppImageDirs = settings.AppImageDirs

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var ctrl *monitor.Controller
	trigger := func(a monitor.Action) { ctrl.Trigger(a) }

	var front renderNotifier
	var quitFront func()
	var runFront func() error
	if opts.foreground {
		m := tui.New(appTitle+" "+version, trigger)
		front, quitFront, runFront = m, m.Quit, m.Run
	} else {
		t := tray.New(trigger)
		front = trayFront{t, desktop}
		quitFront = t.Quit
		runFront = func() error {
			t.Run(nil, nil)
			return nil
		}
	}

	var notifier monitor.Notifier = desktop
	if opts.foreground {
		notifier = fanout{desktop, front}
	}

	updates := monitor.UpdateChecker(nil)
	schedule := ""
	if settings.Updates.Enabled {
		updates = updater.NewChecker(version)
		schedule = settings.Updates.Schedule
	}

	ctrl = monitor.NewController(model, dir, monitor.Deps{
		Tools:     res,
		Lister:    process.SystemLister{},
		Signaller: process.SystemSignaller{},
		Runner:    monitor.ExecRunner{},
		Notifier:  notifier,
		Renderer:  front,
		Updates:   updates,
	}, monitor.Options{
		Tuning: monitor.Tuning{
			PollInterval: settings.Monitor.PollInterval,
			Cooldown:     settings.Monitor.Cooldown,
			QueryTimeout: settings.Monitor.QueryTimeout,
		},
		AutoStartDaemon: opts.autoStartDaemon,
		StartGUI:        opts.gui,
		UpdateSchedule:  schedule,
		About: func(s updater.Status) updater.About {
			return updater.About{
				Version:    version,
				Status:     s,
				Authors:    updater.LoadAuthors(dir, buildinfo.Maintainer),
				Repository: buildinfo.Repository,
			}
		},
		OnQuit: quitFront,
	})

	watchSettings(ctx, ctrl, desktop)

	// Handle OS signals, quit the front end on SIGINT/SIGTERM
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
			quitFront()
		case <-ctx.Done():
		}
	}()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- ctrl.Run(ctx)
	}()

	frontErr := runFront()
	cancel()
	if err := <-loopDone; err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("Monitor loop failed")
	}
	log.Info().Msg("LM Studio tray stopped")
	return frontErr
}

// trayFront pairs the tray renderer with desktop notifications.
type trayFront struct {
	*tray.Tray
	*notify.Desktop
}

func workDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// terminateOtherInstances stops trays started earlier from the same binary.
func terminateOtherInstances() {
	killed := process.TerminateOthers(process.SystemLister{}, process.SystemSignaller{}, instanceMatcher(os.Args[0]), os.Getpid())
	if len(killed) > 0 {
		log.Info().Ints("pids", killed).Msg("Terminated previous instances")
	}
}

// instanceMatcher matches tray processes started as argv0. One-shot
// subcommands and flags of the root command are not trays.
func instanceMatcher(argv0 string) process.InstanceMatcher {
	transient := []string{"help", "completion", "-h", "--help", "-v", "--version"}
	for _, c := range rootCmd.Commands() {
		transient = append(transient, c.Name())
		transient = append(transient, c.Aliases...)
	}
	return process.InstanceMatcher{
		Executable: filepath.Base(argv0),
		Transient:  transient,
	}
}

// watchSettings applies settings.yaml edits while the tray runs.
func watchSettings(ctx context.Context, ctrl *monitor.Controller, desktop *notify.Desktop) {
	path, err := config.EnsureSettingsFile()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot create settings file")
		return
	}
	w, err := config.NewSettingsWatcher(path)
	if err != nil {
		log.Warn().Err(err).Msg("Settings hot reload disabled")
		return
	}
	go func() {
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-w.Changes():
				desktop.SetEnabled(s.Notifications.Enabled)
				ctrl.Reconfigure(monitor.Tuning{
					PollInterval: s.Monitor.PollInterval,
					Cooldown:     s.Monitor.Cooldown,
					QueryTimeout: s.Monitor.QueryTimeout,
				})
			}
		}
	}()
}
