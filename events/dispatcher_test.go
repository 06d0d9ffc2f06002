package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type pingEvent struct{}

func (*pingEvent) Name() EventName { return "ping" }

type countingListener struct {
	calls int
	err   error
	panic bool
}

func (*countingListener) ForEvent() EventName { return "ping" }

func (c *countingListener) Handle(_ context.Context, _ Event) error {
	c.calls++
	if c.panic {
		panic("boom")
	}
	return c.err
}

func TestDispatchReachesAllListeners(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t))
	first := &countingListener{}
	second := &countingListener{err: errors.New("dummy")}
	d.Register(first, second)

	d.Dispatch(context.Background(), &pingEvent{})

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestDispatchRecoversPanickingListener(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t))
	panicking := &countingListener{panic: true}
	after := &countingListener{}
	d.Register(panicking, after)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), &pingEvent{})
	})
	assert.Equal(t, 1, after.calls)
}

func TestDispatchWithoutListeners(t *testing.T) {
	d := NewDispatcher(zaptest.NewLogger(t))
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), &pingEvent{})
	})
}
