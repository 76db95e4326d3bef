package golin

// State of the master state machine
type State uint8

const (
	StateOff   State = 0 // interface closed
	StateIdle  State = 1 // no frame ongoing
	StateBreak State = 2 // break is being sent
	StateBody  State = 3 // rest of frame is being sent/received
	StateDone  State = 4 // frame completed, check Error()
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateIdle:
		return "IDLE"
	case StateBreak:
		return "BREAK"
	case StateBody:
		return "BODY"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
