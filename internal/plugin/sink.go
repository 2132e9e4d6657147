package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/mudra/internal/gesture"
)

var (
	// ErrNoBinding is returned when no plugin is bound to an action kind.
	ErrNoBinding = errors.New("no binding for action")
	// ErrActionFailed wraps the error message reported by a plugin.
	ErrActionFailed = errors.New("plugin reported failure")
)

// Binding routes one action kind to one plugin action.
type Binding struct {
	Plugin  string
	Action  string
	Config  json.RawMessage
	Enabled bool
}

// BindingSource resolves the binding for an action kind. Implementations
// return an error wrapping ErrNoBinding when there is none.
type BindingSource interface {
	BindingFor(kind gesture.ActionKind) (Binding, error)
}

// Sink executes gesture actions by running the bound plugin.
type Sink struct {
	plugins  *Manager
	exec     *Executor
	bindings BindingSource
}

// NewSink creates a Sink.
func NewSink(plugins *Manager, exec *Executor, bindings BindingSource) *Sink {
	return &Sink{
		plugins:  plugins,
		exec:     exec,
		bindings: bindings,
	}
}

// Execute runs the plugin bound to a.Kind. Disabled bindings are skipped
// without error.
func (s *Sink) Execute(ctx context.Context, a gesture.Action) error {
	b, err := s.bindings.BindingFor(a.Kind)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Kind, err)
	}
	if !b.Enabled {
		log.Debug().Str("kind", a.Kind.String()).Msg("binding disabled, skipping")
		return nil
	}

	p, err := s.plugins.Get(b.Plugin)
	if err != nil {
		return err
	}

	req, err := BuildRequest(a, b)
	if err != nil {
		return err
	}

	resp, err := s.exec.Execute(ctx, p, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s/%s: %s", ErrActionFailed, b.Plugin, b.Action, resp.Error)
	}
	return nil
}

// BuildRequest converts an action and its binding into a plugin request.
func BuildRequest(a gesture.Action, b Binding) (*Request, error) {
	var params any
	switch a.Kind {
	case gesture.ActionMoveCursor:
		params = PointParams{X: a.X, Y: a.Y}
	case gesture.ActionScrollDown:
		params = ScrollParams{Amount: a.Amount, Direction: "down"}
	default:
		params = struct{}{}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	cfg := b.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage(`{}`)
	}

	return &Request{
		Action:  b.Action,
		Gesture: a.Kind.String(),
		Config:  cfg,
		Params:  raw,
	}, nil
}
