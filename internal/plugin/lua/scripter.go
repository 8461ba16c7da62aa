package lua

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/touchmask/internal/input/macro"
)

// Scripter runs lua macro steps. Each run gets a fresh State, so runs on
// different goroutines never share an LState.
type Scripter struct {
	timeout time.Duration
	log     zerolog.Logger
}

// NewScripter creates a scripter. A zero timeout uses
// DefaultExecutionTimeout.
func NewScripter(timeout time.Duration, log zerolog.Logger) *Scripter {
	if timeout <= 0 {
		timeout = DefaultExecutionTimeout
	}
	return &Scripter{
		timeout: timeout,
		log:     log.With().Str("component", "lua").Logger(),
	}
}

// Run implements macro.Scripter. An error from a mask action is returned
// as is; anything else is the Lua error.
func (s *Scripter) Run(ctx context.Context, source string, act macro.Actions) error {
	st := NewState(WithExecutionTimeout(s.timeout), WithStateLogger(s.log))
	defer st.Close()

	var failed error
	st.RegisterModule("mask", maskModule(act, &failed))
	err := st.DoString(ctx, source)
	if failed != nil {
		return failed
	}
	return err
}

var _ macro.Scripter = (*Scripter)(nil)
