package golin

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// BaseTransport holds what all transports share: name, config and logging
type BaseTransport struct {
	name     string
	cfg      *TransportConfig
	baudrate int
}

func NewBaseTransport(name string, cfg *TransportConfig) *BaseTransport {
	if cfg.Logger == nil {
		cfg.Logger = NopLogger
	}
	return &BaseTransport{
		name: name,
		cfg:  cfg,
	}
}

// Name returns the transport name.
func (base *BaseTransport) Name() string {
	return base.name
}

// Baudrate returns the baudrate of the last Open
func (base *BaseTransport) Baudrate() int {
	return base.baudrate
}

func (base *BaseTransport) log(level EventType, msg string) {
	if level == EventTypeDebug && !base.cfg.Debug {
		return
	}
	if base.cfg.Debug {
		if _, file, no, ok := runtime.Caller(2); ok {
			msg = fmt.Sprintf("%s#%d %s", filepath.Base(file), no, msg)
		}
	}
	base.cfg.Logger.Log(level, base.name+": "+msg)
}

func (base *BaseTransport) Error(err error) {
	base.log(EventTypeError, err.Error())
}

func (base *BaseTransport) Warn(warn string) {
	base.log(EventTypeWarning, warn)
}

func (base *BaseTransport) Info(info string) {
	base.log(EventTypeInfo, info)
}

func (base *BaseTransport) Debug(debug string) {
	base.log(EventTypeDebug, debug)
}
