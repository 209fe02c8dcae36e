package device

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Event is the completion handle of an asynchronous device operation.
// A nil *Event is treated as already completed.
type Event struct {
	done chan struct{}
	once sync.Once
	err  error
}

var completed = func() *Event {
	e := newEvent()
	e.complete(nil)
	return e
}()

func newEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Completed returns an event that has already finished successfully.
func Completed() *Event {
	return completed
}

// Failed returns an event that has already finished with err.
func Failed(err error) *Event {
	e := newEvent()
	e.complete(err)
	return e
}

func (e *Event) complete(err error) {
	e.once.Do(func() {
		e.err = err
		close(e.done)
	})
}

// Wait blocks until the operation finishes and returns its error.
func (e *Event) Wait() error {
	if e == nil {
		return nil
	}
	<-e.done
	return e.err
}

// Done returns a channel closed when the operation finishes.
func (e *Event) Done() <-chan struct{} {
	if e == nil {
		return completed.done
	}
	return e.done
}

// Finished reports whether the operation has finished, without blocking.
func (e *Event) Finished() bool {
	select {
	case <-e.Done():
		return true
	default:
		return false
	}
}

// WaitAll waits for every event and returns all failures. A single failure is
// returned as is; several are combined into a *multierror.Error.
func WaitAll(events ...*Event) error {
	var result *multierror.Error
	for _, e := range events {
		if err := e.Wait(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	return result
}
