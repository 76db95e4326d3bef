package golin

import "fmt"

type Option func(m *Master) error

// WithName sets the node name used in log output, max MaxNameLen characters
func WithName(name string) Option {
	return func(m *Master) error {
		if name == "" {
			return fmt.Errorf("empty node name")
		}
		if len(name) > MaxNameLen {
			return fmt.Errorf("node name %q longer than %d characters", name, MaxNameLen)
		}
		m.name = name
		return nil
	}
}

func WithLogger(l Logger) Option {
	return func(m *Master) error {
		if l == nil {
			l = NopLogger
		}
		m.log = l
		return nil
	}
}

func WithClock(c Clock) Option {
	return func(m *Master) error {
		if c == nil {
			return fmt.Errorf("nil clock")
		}
		m.clock = c
		return nil
	}
}

// WithTimeoutFactor sets the multiplier applied to the nominal frame
// duration, DefaultTimeoutFactor if not set
func WithTimeoutFactor(factor float64) Option {
	return func(m *Master) error {
		if factor < 1 {
			return fmt.Errorf("timeout factor %.2f below 1", factor)
		}
		m.timeoutFactor = factor
		return nil
	}
}
