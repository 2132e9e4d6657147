// Package app runs the capture, detection and gesture pipeline and hands
// the resulting actions to a sink.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
)

// Pipeline timing defaults.
const (
	IdleFPS     = 5
	ActiveFPS   = 15
	IdleTimeout = 2 * time.Second
)

// ActionSink executes actions decided by the gesture machine.
type ActionSink interface {
	Execute(ctx context.Context, a gesture.Action) error
}

// ActivityRecorder logs emitted actions.
type ActivityRecorder interface {
	Record(a gesture.Action, pose gesture.Pose, at time.Time) (bool, error)
}

// EnabledStore persists the enabled switch across restarts.
type EnabledStore interface {
	Bool(key string, def bool) (bool, error)
	SetBool(key string, value bool) error
}

// DecisionListener is called on the pipeline goroutine after every step.
// It must not block.
type DecisionListener func(d gesture.Decision, at time.Time)

// EnabledListener is called after the enabled switch actually changes.
type EnabledListener func(enabled bool)

// Config holds the collaborators and settings of an App. Nil Camera and
// Detector are replaced with a device camera and the MediaPipe detector
// (or a mock when MediaPipe is unavailable). Zero Tuning means the default
// tuning.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Sink     ActionSink
	Recorder ActivityRecorder
	Settings EnabledStore

	Tuning gesture.Tuning
	Screen gesture.Screen
	Hand   detector.Handedness

	MotionThresh float64
	IdleFPS      int
	ActiveFPS    int
	IdleTimeout  time.Duration
}

// Status is a snapshot for the tray and the HTTP API.
type Status struct {
	Enabled      bool
	Running      bool
	Pose         gesture.Pose
	LastAction   *gesture.Action
	LastActionAt time.Time
	Actions      int
	Tuning       gesture.Tuning
	Screen       gesture.Screen
	Hand         detector.Handedness
}

// App orchestrates capture, detection, the gesture machine and the sink.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	sink     ActionSink
	recorder ActivityRecorder

	// stepMu serializes machine steps; the machine itself has no locking.
	stepMu  sync.Mutex
	machine *gesture.Machine

	mu           sync.RWMutex
	enabled      bool
	pose         gesture.Pose
	lastAction   *gesture.Action
	lastActionAt time.Time
	actions      int
	listeners    []DecisionListener
	onEnabled    []EnabledListener

	cancel context.CancelFunc
	done   chan struct{}
	ctx    context.Context
}

// New creates an App. The enabled switch is restored from config.Settings
// when set and defaults to true.
func New(config Config) *App {
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0
	}
	if config.IdleFPS <= 0 {
		config.IdleFPS = IdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = ActiveFPS
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = IdleTimeout
	}
	if config.Hand == "" {
		config.Hand = detector.Right
	}
	if config.Tuning == (gesture.Tuning{}) {
		config.Tuning = gesture.DefaultTuning()
	}
	if config.Screen.Width <= 0 || config.Screen.Height <= 0 {
		config.Screen = gesture.Screen{Width: 1920, Height: 1080}
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		motion:   capture.NewMotionDetector(config.MotionThresh),
		detector: config.Detector,
		sink:     config.Sink,
		recorder: config.Recorder,
		machine:  gesture.NewMachine(config.Tuning, config.Screen, config.Hand),
		enabled:  true,
		pose:     gesture.PoseAbsent,
		ctx:      context.Background(),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultOptions())
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Info().Msg("using MediaPipe hand detection")
		} else {
			log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
			a.detector = detector.NewMockDetector()
		}
	}

	if config.Settings != nil {
		enabled, err := config.Settings.Bool(enabledKey, true)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read enabled setting")
		}
		a.enabled = enabled
	}

	return a
}

const enabledKey = "enabled"

// SetEnabled switches gesture control on or off. Switching off resets the
// machine's tracking state immediately.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	hooks := a.onEnabled
	a.mu.Unlock()

	if !changed {
		return
	}
	if !enabled {
		a.ProcessHands(nil, time.Now())
	}
	if a.config.Settings != nil {
		if err := a.config.Settings.SetBool(enabledKey, enabled); err != nil {
			log.Warn().Err(err).Msg("failed to persist enabled setting")
		}
	}
	log.Info().Bool("enabled", enabled).Msg("gesture control toggled")

	for _, fn := range hooks {
		fn(enabled)
	}
}

// OnEnabledChange registers a listener for changes of the enabled switch,
// whichever caller made them. Setting the current value again does not
// notify.
func (a *App) OnEnabledChange(fn EnabledListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEnabled = append(a.onEnabled, fn)
}

// IsEnabled reports whether gesture control is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnDecision registers a listener for every machine step.
func (a *App) OnDecision(fn DecisionListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// ProcessHands steps the gesture machine once with the first of hands (or
// no hand) and dispatches the resulting action, if any. While disabled the
// machine is stepped with no hand, so a frame captured before a disable
// cannot act after it.
func (a *App) ProcessHands(hands []detector.HandFrame, now time.Time) gesture.Decision {
	a.stepMu.Lock()
	frame := detector.SelectHand(hands)
	if !a.IsEnabled() {
		frame = nil
	}
	prev := a.machine.Pose()
	d := a.machine.Step(frame, now)
	a.stepMu.Unlock()

	if d.Pose != prev {
		log.Debug().Str("from", prev.String()).Str("to", d.Pose.String()).Msg("pose changed")
	}
	if d.Action != nil {
		a.dispatch(d, now)
	}

	a.mu.Lock()
	a.pose = d.Pose
	if d.Action != nil {
		act := *d.Action
		a.lastAction = &act
		a.lastActionAt = now
		a.actions++
	}
	listeners := a.listeners
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(d, now)
	}
	return d
}

func (a *App) dispatch(d gesture.Decision, now time.Time) {
	act := *d.Action
	log.Debug().Str("action", act.String()).Msg("action")

	if a.sink != nil {
		a.mu.RLock()
		ctx := a.ctx
		a.mu.RUnlock()

		if err := a.sink.Execute(ctx, act); err != nil {
			if errors.Is(err, plugin.ErrNoBinding) {
				log.Debug().Err(err).Msg("action not bound")
			} else {
				log.Warn().Err(err).Str("action", act.String()).Msg("action failed")
			}
		}
	}

	if a.recorder != nil {
		if _, err := a.recorder.Record(act, d.Pose, now); err != nil {
			log.Warn().Err(err).Msg("failed to record activity")
		}
	}
}

// Start opens the camera and starts the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.config.IdleFPS)

	ctx, cancel := context.WithCancel(context.Background())
	a.ctx = ctx
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.runPipeline(ctx, a.done)

	log.Info().Msg("detection pipeline started")
	return nil
}

// Stop halts the pipeline, waits for it to exit and releases the camera
// and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.ctx = context.Background()
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if err := a.camera.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing camera")
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing detector")
	}

	a.ProcessHands(nil, time.Now())
	log.Info().Msg("detection pipeline stopped")
}

// Status returns a snapshot of the app state.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Status{
		Enabled:      a.enabled,
		Running:      a.cancel != nil,
		Pose:         a.pose,
		LastActionAt: a.lastActionAt,
		Actions:      a.actions,
		Tuning:       a.config.Tuning,
		Screen:       a.config.Screen,
		Hand:         a.config.Hand,
	}
	if a.lastAction != nil {
		act := *a.lastAction
		s.LastAction = &act
	}
	return s
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}
