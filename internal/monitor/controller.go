package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/lmstudio-tray/lmstray/internal/process"
	"github.com/lmstudio-tray/lmstray/internal/updater"
)

// DefaultPollInterval is the period of the status poll.
const DefaultPollInterval = 10 * time.Second

// Renderer applies a View to the menu-rendering layer.
type Renderer interface {
	Render(View)
}

// UpdateChecker checks for a newer tray release.
type UpdateChecker interface {
	Check(ctx context.Context) updater.Result
}

// Tuning holds the settings that may change while the loop runs.
type Tuning struct {
	PollInterval time.Duration
	Cooldown     time.Duration
	QueryTimeout time.Duration
}

// Options configures a Controller.
type Options struct {
	Tuning
	// AutoStartDaemon starts a stopped daemon after the first poll.
	AutoStartDaemon bool
	// StartGUI starts the desktop app after the first poll.
	StartGUI bool
	// UpdateSchedule is a cron spec for background update checks; empty
	// disables them.
	UpdateSchedule string
	About          func(updater.Status) updater.About
	OnQuit         func()
	Now            func() time.Time
	Sleep          func(time.Duration)
}

// Deps are the collaborators a Controller drives.
type Deps struct {
	Tools     Tools
	Lister    process.Lister
	Signaller process.Signaller
	Runner    Runner
	Notifier  Notifier
	Renderer  Renderer
	Updates   UpdateChecker
}

type updateOutcome struct {
	result updater.Result
	manual bool
}

// Controller owns the tray's mutable state. All state changes happen on the
// goroutine running Run; other goroutines only post into its channels.
type Controller struct {
	classifier *Classifier
	seq        *Sequencer
	notifier   Notifier
	renderer   Renderer
	updates    UpdateChecker
	opts       Options

	last         ModelStatus
	lastPoll     PollResult
	loaded       []string
	startupDone  bool
	updateStatus updater.Status
	latest       string
	notifiedFor  string

	actions     chan Action
	refresh     chan struct{}
	updateTicks chan struct{}
	updateDone  chan updateOutcome
	tuning      chan Tuning
}

// NewController wires a Controller for the expected model.
func NewController(model, workDir string, deps Deps, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if model == "" {
		model = NoModel
	}

	c := &Controller{
		notifier:    deps.Notifier,
		renderer:    deps.Renderer,
		updates:     deps.Updates,
		opts:        opts,
		actions:     make(chan Action, 8),
		refresh:     make(chan struct{}, 1),
		updateTicks: make(chan struct{}, 1),
		updateDone:  make(chan updateOutcome, 1),
		tuning:      make(chan Tuning, 1),
	}
	c.classifier = &Classifier{
		Tools:        deps.Tools,
		Inspector:    process.NewInspector(deps.Lister),
		Runner:       deps.Runner,
		App:          DesktopMatcher,
		Model:        model,
		WorkDir:      workDir,
		QueryTimeout: opts.QueryTimeout,
	}
	c.seq = &Sequencer{
		Classifier: c.classifier,
		Lister:     deps.Lister,
		Signaller:  deps.Signaller,
		Runner:     deps.Runner,
		Notifier:   deps.Notifier,
		Guard:      NewGuard(opts.Now),
		Cooldown:   opts.Cooldown,
		Sleep:      opts.Sleep,
		Refresh:    func() { c.Poll(context.Background()) },
		Defer: func(d time.Duration) {
			time.AfterFunc(d, c.RequestRefresh)
		},
	}
	return c
}

// Status returns the last observed model status ("" before the first poll).
func (c *Controller) Status() ModelStatus { return c.last }

// LastPoll returns the last classification pass.
func (c *Controller) LastPoll() PollResult { return c.lastPoll }

// Trigger queues a menu action. It is safe to call from any goroutine.
func (c *Controller) Trigger(a Action) {
	select {
	case c.actions <- a:
	default:
		log.Warn().Str("action", string(a)).Msg("Action queue full, dropping click")
	}
}

// RequestRefresh queues a poll. Requests coalesce while one is pending.
func (c *Controller) RequestRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Reconfigure applies new tuning on the loop goroutine.
func (c *Controller) Reconfigure(t Tuning) {
	select {
	case <-c.tuning:
	default:
	}
	c.tuning <- t
}

// Run polls immediately, then serves timers and actions until ctx is done or
// the quit action is triggered.
func (c *Controller) Run(ctx context.Context) error {
	c.Poll(ctx)

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	if c.updates != nil && c.opts.UpdateSchedule != "" {
		sched := cron.New()
		if _, err := sched.AddFunc(c.opts.UpdateSchedule, c.requestUpdateCheck); err != nil {
			log.Error().Err(err).Str("schedule", c.opts.UpdateSchedule).Msg("Invalid update schedule")
		} else {
			sched.Start()
			defer sched.Stop()
			c.requestUpdateCheck()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Poll(ctx)
		case <-c.refresh:
			c.Poll(ctx)
		case a := <-c.actions:
			if a == ActionQuit {
				log.Info().Msg("Quit requested")
				if c.opts.OnQuit != nil {
					c.opts.OnQuit()
				}
				return nil
			}
			c.Dispatch(ctx, a)
		case <-c.updateTicks:
			c.startUpdateCheck(ctx, false)
		case out := <-c.updateDone:
			c.OnUpdateResult(out.result, out.manual)
		case t := <-c.tuning:
			c.applyTuning(t, ticker)
		}
	}
}

func (c *Controller) applyTuning(t Tuning, ticker *time.Ticker) {
	if t.PollInterval > 0 && t.PollInterval != c.opts.PollInterval {
		c.opts.PollInterval = t.PollInterval
		ticker.Reset(t.PollInterval)
	}
	if t.Cooldown > 0 {
		c.opts.Cooldown = t.Cooldown
		c.seq.Cooldown = t.Cooldown
	}
	if t.QueryTimeout > 0 {
		c.opts.QueryTimeout = t.QueryTimeout
		c.classifier.QueryTimeout = t.QueryTimeout
	}
	log.Info().
		Dur("poll_interval", c.opts.PollInterval).
		Dur("cooldown", c.opts.Cooldown).
		Dur("query_timeout", c.opts.QueryTimeout).
		Msg("Settings applied")
}

// Poll classifies the current state and feeds it to OnPoll. After the first
// poll the startup actions run once.
func (c *Controller) Poll(ctx context.Context) {
	c.OnPoll(c.classifier.Poll(ctx, c.last))
	if !c.startupDone {
		c.startupDone = true
		c.runStartupActions()
	}
}

// OnPoll stores res and rebuilds the menu. It emits one notification when a
// previous status exists and the model status differs from it, and reports
// whether it did.
func (c *Controller) OnPoll(res PollResult) bool {
	emitted := false
	if c.last != "" && res.Model != c.last {
		log.Info().
			Str("from", string(c.last)).
			Str("to", string(res.Model)).
			Msg("Model status changed")
		c.notifier.Notify(TitleApp, TransitionMessage(res.Model, c.classifier.Model))
		emitted = true
	}
	if res.Model != "" {
		c.last = res.Model
	}
	if !res.Stale {
		c.loaded = res.Loaded
	}
	c.lastPoll = res
	c.render()
	return emitted
}

func (c *Controller) runStartupActions() {
	if c.opts.AutoStartDaemon && c.lastPoll.Daemon == StatusStopped {
		log.Info().Msg("Auto-starting daemon")
		c.seq.StartDaemon()
	}
	if c.opts.StartGUI && c.lastPoll.App == StatusStopped {
		log.Info().Msg("Starting desktop app")
		c.seq.StartDesktopApp()
	}
}

// View computes what the renderer shows for the current state.
func (c *Controller) View() View {
	_, lms := c.classifier.Tools.LMS()
	return View{
		Model:   c.last,
		Tooltip: Tooltip(c.last, c.classifier.Model, c.loaded),
		Items: BuildMenu(MenuState{
			Daemon:          c.lastPoll.Daemon,
			App:             c.lastPoll.App,
			Model:           c.last,
			ExpectedModel:   c.classifier.Model,
			LMSAvailable:    lms,
			UpdateAvailable: c.latest,
		}),
	}
}

func (c *Controller) render() {
	if c.renderer != nil {
		c.renderer.Render(c.View())
	}
}

// Dispatch runs a menu action synchronously on the calling goroutine.
func (c *Controller) Dispatch(ctx context.Context, a Action) {
	switch a {
	case ActionStartDaemon:
		c.seq.StartDaemon()
	case ActionStopDaemon:
		c.seq.StopDaemon()
	case ActionStartDesktopApp:
		c.seq.StartDesktopApp()
	case ActionStopDesktopApp:
		c.seq.StopDesktopApp()
	case ActionReloadModel:
		c.seq.ReloadModel()
	case ActionShowStatus:
		c.ShowStatus(ctx)
	case ActionCheckUpdates:
		c.startUpdateCheck(ctx, true)
	case ActionAbout:
		c.ShowAbout()
	default:
		log.Warn().Str("action", string(a)).Msg("Unknown action")
	}
}

// ShowStatus reports the loaded models as listed by the CLI.
func (c *Controller) ShowStatus(ctx context.Context) {
	lms, ok := c.classifier.Tools.LMS()
	if !ok {
		c.notifier.Notify("Status", "lms CLI not found, monitoring only")
		return
	}
	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := c.seq.Runner.Run(qctx, lms, "ps")
	if err != nil {
		log.Error().Err(err).Msg("Error getting status")
		c.notifier.Notify(TitleError, "Could not get status: "+err.Error())
		return
	}
	body := strings.TrimSpace(res.Stdout)
	if body == "" {
		body = "No models loaded"
	}
	c.notifier.Notify("Status", body)
}

// ShowAbout reports version and authorship.
func (c *Controller) ShowAbout() {
	if c.opts.About == nil {
		return
	}
	c.notifier.Notify("About", c.opts.About(c.updateStatus).String())
}

func (c *Controller) requestUpdateCheck() {
	select {
	case c.updateTicks <- struct{}{}:
	default:
	}
}

// startUpdateCheck runs the network request off the loop and posts the
// result back into it.
func (c *Controller) startUpdateCheck(ctx context.Context, manual bool) {
	if c.updates == nil {
		return
	}
	go func() {
		res := c.updates.Check(ctx)
		select {
		case c.updateDone <- updateOutcome{result: res, manual: manual}:
		case <-ctx.Done():
		}
	}()
}

// OnUpdateResult records an update check outcome. Background checks notify
// once per newly seen version; manual checks always notify.
func (c *Controller) OnUpdateResult(res updater.Result, manual bool) {
	c.updateStatus = res.Status
	if res.Err != nil {
		log.Debug().Err(res.Err).Msg("Update check failed")
	}

	switch {
	case res.Status == updater.StatusAvailable:
		c.latest = res.Latest
		if manual || c.notifiedFor != res.Latest {
			c.notifiedFor = res.Latest
			c.notifier.Notify("Update Available", res.Message())
		}
	case manual:
		c.notifier.Notify("Update Check", res.Message())
	}
	c.render()
}
