package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/mudra/internal/capture"
)

// runPipeline reads frames until ctx is cancelled.
//
// Frames are read at the idle rate until motion is seen, then at the active
// rate until neither motion nor a hand has been seen for the idle timeout.
// Hand detection only runs in active mode. Whenever detection does not run
// (disabled, idle, detector error) the machine is stepped with no hand, so
// its tracking state never outlives the gesture.
func (a *App) runPipeline(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	gov := capture.NewRateGovernor(a.config.IdleFPS, a.config.ActiveFPS, a.config.IdleTimeout)
	ticker := time.NewTicker(gov.Interval())
	defer ticker.Stop()

	retune := func() {
		a.camera.SetFPS(gov.FPS())
		ticker.Reset(gov.Interval())
		log.Debug().Bool("active", gov.Active()).Int("fps", gov.FPS()).Msg("capture rate changed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()

		if !a.IsEnabled() {
			if gov.Active() {
				gov.Idle()
				a.motion.Reset()
				retune()
			}
			a.ProcessHands(nil, now)
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			log.Warn().Err(err).Msg("error reading frame")
			a.ProcessHands(nil, now)
			continue
		}

		motion, changed := a.motion.Detect(frame)
		if gov.Observe(motion, now) {
			log.Debug().Float64("changed", changed).Msg("motion state switched")
			retune()
		}

		if !gov.Active() {
			frame.Close()
			a.ProcessHands(nil, now)
			continue
		}

		hands, err := a.detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Warn().Err(err).Msg("error detecting hands")
			a.ProcessHands(nil, now)
			continue
		}

		// A visible hand keeps the pipeline active even when it holds still.
		if len(hands) > 0 && gov.Observe(true, now) {
			retune()
		}

		a.ProcessHands(hands, now)
	}
}
