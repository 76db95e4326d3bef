package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/roffe/golin"
)

const DefaultRetryDelay = 10 * time.Millisecond

// Result is reported once per executed entry
type Result struct {
	Entry    Entry
	Frame    golin.Frame
	Flags    golin.ErrorFlags
	Attempts int
	Err      error
}

// Runner executes a schedule table on a Master. Failed frames are retried
// up to Retries times and reported, they never stop the table.
type Runner struct {
	Master     *golin.Master
	Entries    []Entry
	Retries    int
	RetryDelay time.Duration
	OnResult   func(Result)
	// OnRetry is called after every failed attempt
	OnRetry func(e Entry, attempt uint, err error)
}

// Run executes the table cycles times, 0 runs until ctx is done
func (r *Runner) Run(ctx context.Context, cycles int) error {
	if r.Master == nil {
		return fmt.Errorf("schedule: no master")
	}
	if len(r.Entries) == 0 {
		return fmt.Errorf("schedule: empty table")
	}
	for cycle := 0; cycles == 0 || cycle < cycles; cycle++ {
		for _, e := range r.Entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := r.exec(ctx, e)
			if r.OnResult != nil {
				r.OnResult(res)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if e.Delay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(e.Delay):
				}
			}
		}
	}
	return nil
}

func (r *Runner) exec(ctx context.Context, e Entry) Result {
	res := Result{Entry: e}
	delay := r.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	retries := r.Retries
	if retries < 0 {
		retries = 0
	}
	m := r.Master
	res.Err = retry.Do(
		func() error {
			res.Attempts++
			m.ResetStateMachine()
			m.ResetError()
			switch e.Type {
			case golin.MasterRequest:
				res.Flags = m.SendMasterRequestBlocking(e.Version, e.ID, e.Data)
			case golin.SlaveResponse:
				_, res.Flags = m.ReceiveSlaveResponseBlocking(e.Version, e.ID, e.Length)
			default:
				return retry.Unrecoverable(fmt.Errorf("schedule: invalid frame type %d", e.Type))
			}
			res.Frame = m.Frame()
			return m.Err()
		},
		retry.Attempts(uint(retries+1)),
		retry.Context(ctx),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if r.OnRetry != nil {
				r.OnRetry(e, n+1, err)
			}
		}),
	)
	m.ResetStateMachine()
	return res
}
