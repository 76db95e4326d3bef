package golin

import "fmt"

type Stats struct {
	Requests        uint64
	Responses       uint64
	Failed          uint64
	StateErrors     uint64
	EchoErrors      uint64
	TimeoutErrors   uint64
	ChecksumErrors  uint64
	LengthErrors    uint64
	TransportErrors uint64
	MiscErrors      uint64
}

func (st *Stats) String() string {
	return fmt.Sprintf("requests: %d responses: %d failed: %d (state: %d echo: %d timeout: %d checksum: %d length: %d transport: %d misc: %d)",
		st.Requests, st.Responses, st.Failed,
		st.StateErrors, st.EchoErrors, st.TimeoutErrors, st.ChecksumErrors,
		st.LengthErrors, st.TransportErrors, st.MiscErrors,
	)
}

func (st *Stats) add(ft FrameType, flags ErrorFlags) {
	switch ft {
	case MasterRequest:
		st.Requests++
	case SlaveResponse:
		st.Responses++
	}
	if flags == ErrNone {
		return
	}
	st.Failed++
	for _, c := range []struct {
		flag    ErrorFlags
		counter *uint64
	}{
		{ErrState, &st.StateErrors},
		{ErrEcho, &st.EchoErrors},
		{ErrTimeout, &st.TimeoutErrors},
		{ErrChecksum, &st.ChecksumErrors},
		{ErrLength, &st.LengthErrors},
		{ErrTransport, &st.TransportErrors},
		{ErrMisc, &st.MiscErrors},
	} {
		if flags.Has(c.flag) {
			*c.counter++
		}
	}
}
