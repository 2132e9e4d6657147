// Package testdata holds recorded-style landmark sequences for end-to-end
// tests of the gesture pipeline.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Epoch is the clock origin of every sequence. Frame times are offsets
// from it.
var Epoch = time.Unix(1_700_000_000, 0)

// Step is one camera tick: its time and the hands seen. Hands is empty when
// no hand was detected.
type Step struct {
	At    time.Time
	Hands []detector.HandFrame
}

type sequenceFile struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	IntervalMs  int         `json:"interval_ms"`
	Frames      []frameJSON `json:"frames"`
}

type frameJSON struct {
	TMs   int        `json:"t_ms"`
	Hands []handJSON `json:"hands"`
}

type handJSON struct {
	Handedness string       `json:"handedness"`
	Score      float64      `json:"score"`
	Points     [][3]float64 `json:"points"`
}

// Names lists the embedded sequences, sorted.
func Names() []string {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}

// LoadSteps loads a sequence by name, including ticks without a hand.
func LoadSteps(name string) ([]Step, error) {
	data, err := sequencesFS.ReadFile(path.Join("sequences", name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	var seq sequenceFile
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}

	steps := make([]Step, 0, len(seq.Frames))
	for i, f := range seq.Frames {
		at := Epoch.Add(time.Duration(f.TMs) * time.Millisecond)
		step := Step{At: at}
		for _, h := range f.Hands {
			hand, err := decodeHand(h, at)
			if err != nil {
				return nil, fmt.Errorf("sequence %s frame %d: %w", name, i, err)
			}
			step.Hands = append(step.Hands, hand)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// LoadSequence loads a sequence by name and returns the first hand of every
// tick that has one. Each frame's Timestamp carries its tick time.
func LoadSequence(name string) ([]detector.HandFrame, error) {
	steps, err := LoadSteps(name)
	if err != nil {
		return nil, err
	}

	var frames []detector.HandFrame
	for _, s := range steps {
		if len(s.Hands) > 0 {
			frames = append(frames, s.Hands[0])
		}
	}
	return frames, nil
}

func decodeHand(h handJSON, at time.Time) (detector.HandFrame, error) {
	handedness, err := detector.ParseHandedness(h.Handedness)
	if err != nil {
		return detector.HandFrame{}, err
	}

	points := make([]detector.NormalizedPoint, len(h.Points))
	for i, p := range h.Points {
		points[i] = detector.NormalizedPoint{X: p[0], Y: p[1], Z: p[2]}
	}
	return detector.NewHandFrame(points, handedness, h.Score, at)
}
