package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roffe/golin"
)

// sendRequest runs one master request, args are <id> [data bytes...]
func sendRequest(ctx context.Context, m *golin.Master, version golin.Version, args []string) (golin.Frame, error) {
	if len(args) < 1 {
		return golin.Frame{}, fmt.Errorf("usage: <id> [data bytes...]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return golin.Frame{}, err
	}
	data, err := parseData(args[1:])
	if err != nil {
		return golin.Frame{}, err
	}
	m.ResetStateMachine()
	m.ResetError()
	m.SendMasterRequest(version, id, data)
	if _, err := m.Wait(ctx); err != nil {
		return golin.Frame{}, err
	}
	return m.Frame(), m.Err()
}

// receiveResponse runs one slave response, args are <id> <n>
func receiveResponse(ctx context.Context, m *golin.Master, version golin.Version, args []string) (golin.Frame, error) {
	if len(args) != 2 {
		return golin.Frame{}, fmt.Errorf("usage: <id> <n>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return golin.Frame{}, err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return golin.Frame{}, fmt.Errorf("invalid length %q: %w", args[1], err)
	}
	if n < 0 || n > golin.MaxDataLen {
		return golin.Frame{}, fmt.Errorf("length %d out of range 0-%d", n, golin.MaxDataLen)
	}
	m.ResetStateMachine()
	m.ResetError()
	m.ReceiveSlaveResponse(version, id, n)
	if _, err := m.Wait(ctx); err != nil {
		return golin.Frame{}, err
	}
	return m.Frame(), m.Err()
}
