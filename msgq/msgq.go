// Package msgq implements the output-queue contract this system posts
// extent, ancillary, container, and exception records into: a
// post-or-timeout primitive with an empty message as the completion
// sentinel. It is the Go counterpart of the MsgQ collaborator consumed
// by the original reader; Chan is the only concrete implementation and
// is what every test in this module posts into.
package msgq

import (
	"errors"
	"time"
)

// ErrStateTimeout mirrors MsgQ::STATE_TIMEOUT: the post did not complete
// within the requested timeout and should be retried by the caller.
var ErrStateTimeout = errors.New("msgq: post timed out")

// Queue is the interface consumed by the beam fan-out (reader.Reader).
type Queue interface {
	// PostCopy copies buf and enqueues it, blocking up to timeout. It
	// returns the number of bytes posted, or ErrStateTimeout, or
	// another error for a non-retryable failure.
	PostCopy(buf []byte, timeout time.Duration) (int, error)
	// PostRef enqueues buf without copying it; callers must not
	// mutate buf after calling PostRef.
	PostRef(buf []byte, timeout time.Duration) (int, error)
	Name() string
}

// Chan is a bounded-channel Queue, the default used by reader.Reader
// when no external queue is supplied and by this module's own tests.
type Chan struct {
	name string
	ch   chan []byte
}

// NewChan creates a Chan with the given buffer depth. Depth is normally
// sized by the caller from host memory (see reader.New, grounded
// on github.com/pbnjay/memory) to implement §5's resource budget.
func NewChan(name string, depth int) *Chan {
	if depth < 1 {
		depth = 1
	}
	return &Chan{name: name, ch: make(chan []byte, depth)}
}

func (c *Chan) Name() string { return c.name }

func (c *Chan) PostCopy(buf []byte, timeout time.Duration) (int, error) {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return c.PostRef(cp, timeout)
}

func (c *Chan) PostRef(buf []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		select {
		case c.ch <- buf:
			return len(buf), nil
		default:
			return 0, ErrStateTimeout
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case c.ch <- buf:
		return len(buf), nil
	case <-t.C:
		return 0, ErrStateTimeout
	}
}

// Receive blocks for the next posted message, returning ok=false once
// the empty-message completion sentinel has been consumed.
func (c *Chan) Receive() (buf []byte, ok bool) {
	buf = <-c.ch
	return buf, len(buf) > 0
}

// TryReceive is a non-blocking variant used by tests that want to drain
// everything posted so far without waiting for the sentinel.
func (c *Chan) TryReceive() ([]byte, bool) {
	select {
	case buf := <-c.ch:
		return buf, true
	default:
		return nil, false
	}
}
