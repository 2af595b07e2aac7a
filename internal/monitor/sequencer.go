package monitor

import (
	"context"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/resolver"
)

// Convergence budgets.
const (
	ConfirmChecks  = 5
	GracefulChecks = 9
	ForceChecks    = 6
	CheckInterval  = 500 * time.Millisecond
	AttemptTimeout = 30 * time.Second
	DeferredDelay  = 2 * time.Second
)

// Notification titles.
const (
	TitleApp   = "LM Studio"
	TitleError = "Error"
	TitleInfo  = "Info"
)

// Notifier delivers desktop notifications.
type Notifier interface {
	Notify(title, body string)
}

// Sequencer runs the start/stop/reload control actions. Every action is
// fire-and-forget: outcomes are reported through the Notifier and errors never
// reach the caller.
type Sequencer struct {
	Classifier *Classifier
	Lister     process.Lister
	Signaller  process.Signaller
	Runner     Runner
	Notifier   Notifier
	Guard      *Guard
	Cooldown   time.Duration
	Sleep      func(time.Duration)

	// Refresh re-polls status and rebuilds the menu immediately.
	Refresh func()
	// Defer schedules a one-shot refresh after d.
	Defer func(d time.Duration)
}

func (s *Sequencer) tools() Tools { return s.Classifier.Tools }

// begin applies the cooldown and returns a logger tagged with a run ID.
func (s *Sequencer) begin(action string) (zerolog.Logger, bool) {
	window := s.Cooldown
	if window <= 0 {
		window = DefaultCooldown
	}
	if ok, _ := s.Guard.TryBegin(action, window); !ok {
		return zerolog.Nop(), false
	}
	l := log.With().Str("action", action).Str("run", uuid.NewString()).Logger()
	l.Info().Msg("Action started")
	return l, true
}

// finish recovers from unexpected failures and refreshes the display.
func (s *Sequencer) finish(l zerolog.Logger) {
	if r := recover(); r != nil {
		l.Error().Interface("panic", r).Msg("Action failed")
		s.Notifier.Notify(TitleError, fmt.Sprintf("Error: %v", r))
	}
	if s.Refresh != nil {
		s.Refresh()
	}
	if s.Defer != nil {
		s.Defer(DeferredDelay)
	}
}

func (s *Sequencer) poll(pred func() bool, attempts int) bool {
	ok, _ := PollUntil(pred, attempts, CheckInterval, s.Sleep)
	return ok
}

func (s *Sequencer) daemonRunning() bool {
	return s.Classifier.Inspector.IsRunning(resolver.LlmsterName)
}

// runAttempts executes attempts in order until done reports success. Attempts
// that do not name an absolute executable are skipped.
func (s *Sequencer) runAttempts(l zerolog.Logger, attempts []Attempt, done func(Result) bool) (Result, bool, error) {
	var last Result
	var lastErr error
	for _, a := range attempts {
		if !a.runnable() {
			l.Warn().Str("cmd", a.String()).Msg("Skipping invalid command")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), AttemptTimeout)
		res, err := s.Runner.Run(ctx, a.Path, a.Args...)
		cancel()
		if err != nil {
			l.Debug().Err(err).Str("cmd", a.String()).Msg("Attempt failed to run")
			lastErr = err
			continue
		}
		last = res
		l.Debug().Str("cmd", a.String()).Int("exit", res.ExitCode).Msg("Attempt finished")
		if done(res) {
			return res, true, nil
		}
	}
	return last, false, lastErr
}

// StartDaemon starts the headless daemon, stopping the desktop app first.
func (s *Sequencer) StartDaemon() {
	l, ok := s.begin("start_daemon")
	if !ok {
		return
	}
	defer s.finish(l)

	if s.Classifier.DesktopApp() == StatusRunning {
		if !s.stopDesktopProcesses(l) {
			s.Notifier.Notify(TitleError, "Failed to stop desktop app before starting the daemon")
			return
		}
	}

	attempts := DaemonAttempts(s.tools(), DirStart)
	if len(attempts) == 0 {
		s.Notifier.Notify(TitleError, "Neither lms nor llmster found. Install LM Studio first.")
		return
	}

	res, started, err := s.runAttempts(l, attempts, func(r Result) bool {
		return r.ExitCode == 0 && s.poll(s.daemonRunning, ConfirmChecks)
	})
	if started {
		l.Info().Msg("LM Studio daemon started")
		s.Notifier.Notify(TitleApp, "LM Studio daemon is running")
		return
	}
	detail := failureDetail(res, err)
	l.Error().Str("detail", detail).Msg("Failed to start daemon")
	s.Notifier.Notify(TitleError, "Daemon start failed: "+detail)
}

// StopDaemon stops the daemon, escalating to signals when needed.
func (s *Sequencer) StopDaemon() {
	l, ok := s.begin("stop_daemon")
	if !ok {
		return
	}
	defer s.finish(l)

	if !s.daemonRunning() {
		s.Notifier.Notify(TitleInfo, "LM Studio daemon is not running")
		return
	}

	stopped, res, err := s.stopDaemonBestEffort(l)
	if stopped {
		l.Info().Msg("LM Studio daemon stopped")
		s.Notifier.Notify(TitleApp, "LM Studio daemon stopped")
		return
	}
	detail := failureDetail(res, err)
	l.Error().Str("detail", detail).Msg("Failed to stop daemon")
	s.Notifier.Notify(TitleError, "Daemon stop failed: "+detail)
}

// stopDaemonBestEffort tries the graceful CLI variants, then signals.
func (s *Sequencer) stopDaemonBestEffort(l zerolog.Logger) (bool, Result, error) {
	gone := func() bool { return !s.daemonRunning() }

	res, stopped, err := s.runAttempts(l, DaemonAttempts(s.tools(), DirStop), func(Result) bool {
		return s.poll(gone, ConfirmChecks)
	})
	if stopped {
		return true, res, nil
	}

	l.Warn().Msg("Graceful daemon stop did not converge, forcing")
	s.forceStopDaemon()
	return s.poll(gone, ForceChecks), res, err
}

func (s *Sequencer) forceStopDaemon() {
	process.KillByExactName(s.Lister, s.Signaller, resolver.LlmsterName, syscall.SIGKILL)
	if s.daemonRunning() {
		process.KillByPattern(s.Lister, s.Signaller, resolver.LlmsterName, syscall.SIGKILL)
	}
}

// StartDesktopApp launches the desktop app, stopping the daemon first.
func (s *Sequencer) StartDesktopApp() {
	l, ok := s.begin("start_desktop_app")
	if !ok {
		return
	}
	defer s.finish(l)

	if _, ok := s.tools().LMS(); !ok {
		s.Notifier.Notify(TitleError, "lms CLI not found. Install LM Studio first.")
		return
	}

	if s.daemonRunning() {
		if stopped, _, _ := s.stopDaemonBestEffort(l); !stopped {
			s.Notifier.Notify(TitleError, "Failed to stop daemon before starting desktop app")
			return
		}
	}

	if len(s.Classifier.DesktopPIDs()) > 0 {
		s.Notifier.Notify(TitleInfo, "LM Studio desktop app is already running")
		return
	}

	path, ok := s.Classifier.PackageLauncher()
	if !ok {
		path, ok = s.Classifier.AppImage()
	}
	if !ok {
		s.Notifier.Notify(TitleError, "LM Studio desktop app not found. Install the .deb package or an AppImage.")
		return
	}

	pid, err := s.Runner.Start(path)
	if err != nil {
		l.Error().Err(err).Str("path", path).Msg("Failed to start desktop app")
		s.Notifier.Notify(TitleError, fmt.Sprintf("Failed to start desktop app: %v", err))
		return
	}
	l.Info().Int("pid", pid).Str("path", path).Msg("LM Studio desktop app started")
	s.Notifier.Notify(TitleApp, "LM Studio desktop app started")
}

// StopDesktopApp terminates the desktop app's root processes.
func (s *Sequencer) StopDesktopApp() {
	l, ok := s.begin("stop_desktop_app")
	if !ok {
		return
	}
	defer s.finish(l)

	if len(s.Classifier.DesktopPIDs()) == 0 {
		s.Notifier.Notify(TitleInfo, "LM Studio desktop app is not running")
		return
	}
	if s.stopDesktopProcesses(l) {
		s.Notifier.Notify(TitleApp, "LM Studio desktop app stopped")
		return
	}
	s.Notifier.Notify(TitleError, "Failed to stop desktop app")
}

// stopDesktopProcesses sends SIGTERM to every root process, waits for them to
// exit and sends SIGKILL once if they outlive the graceful budget.
func (s *Sequencer) stopDesktopProcesses(l zerolog.Logger) bool {
	pids := s.Classifier.DesktopPIDs()
	if len(pids) == 0 {
		return true
	}
	process.SignalAll(s.Signaller, pids, syscall.SIGTERM)

	gone := func() bool { return len(s.Classifier.DesktopPIDs()) == 0 }
	if s.poll(gone, GracefulChecks) {
		return true
	}

	remaining := s.Classifier.DesktopPIDs()
	l.Warn().Ints("pids", remaining).Msg("Desktop app ignored SIGTERM, sending SIGKILL")
	process.SignalAll(s.Signaller, remaining, syscall.SIGKILL)
	return s.poll(gone, ForceChecks)
}

// ReloadModel asks the CLI to load the expected model.
func (s *Sequencer) ReloadModel() {
	l, ok := s.begin("reload_model")
	if !ok {
		return
	}
	defer s.finish(l)

	model := s.Classifier.Model
	if model == "" || model == NoModel {
		s.Notifier.Notify(TitleInfo, "No model specified for reloading")
		return
	}
	lms, ok := s.tools().LMS()
	if !ok {
		s.Notifier.Notify(TitleError, "lms CLI not found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), AttemptTimeout)
	defer cancel()
	res, err := s.Runner.Run(ctx, lms, "load", model)
	if err != nil || res.ExitCode != 0 {
		detail := failureDetail(res, err)
		l.Error().Str("detail", detail).Msg("Error reloading model")
		s.Notifier.Notify(TitleError, "Model could not be reloaded: "+detail)
		return
	}
	l.Info().Str("model", model).Msg("Model reloaded")
	s.Notifier.Notify(TitleApp, fmt.Sprintf("Model %s is being reloaded", model))
}

func failureDetail(res Result, err error) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	if res.ExitCode != 0 {
		return fmt.Sprintf("exit status %d", res.ExitCode)
	}
	return "Unknown error"
}
