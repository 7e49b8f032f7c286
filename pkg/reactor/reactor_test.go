package reactor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
)

func TestHandlerFiresOnReadyThenQuits(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)
	require.Nil(t, k.MessageWrite(ends.H1, []byte("hello"), nil))

	var readyID uint64
	h := HandlerFunc{
		Ready: func(id uint64) {
			readyID = id
			r.Quit()
		},
		Error: func(id uint64, outcome Outcome) {
			t.Fatalf("unexpected OnError(%d, %s)", id, outcome)
		},
	}
	id, aerr := r.AddHandler(h, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, aerr)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, id, readyID)
	assert.Len(t, r.handlers, 0)
}

// TestRunLoopDeadline mirrors the run-loop deadline scenario: a handler
// registered on an endpoint nobody ever writes to must fire exactly one
// on_error(deadline_exceeded) and leave no handlers behind.
func TestRunLoopDeadline(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	var errorCount int32
	var gotOutcome Outcome
	h := HandlerFunc{
		Ready: func(id uint64) {
			t.Fatalf("unexpected OnReady(%d)", id)
		},
		Error: func(id uint64, outcome Outcome) {
			atomic.AddInt32(&errorCount, 1)
			gotOutcome = outcome
		},
	}
	_, aerr := r.AddHandler(h, ends.H0, khandle.SignalReadable, 10*time.Millisecond)
	require.NoError(t, aerr)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, int32(1), errorCount)
	assert.Equal(t, OutcomeDeadlineExceeded, gotOutcome)
	assert.Len(t, r.handlers, 0)
}

// TestNestedRunToDepth mirrors the nested-run scenario: each on_ready
// registers one more handler (already satisfiable) and recurses into a
// fresh Run() call, down to depth 10, where the innermost frame quits.
// Every level's own Run() then unwinds naturally once its handler table
// empties, with no on_error anywhere in the chain.
func TestNestedRunToDepth(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	const depth = 10
	var readyCount, errorCount int32

	var recurse func(level int)
	recurse = func(level int) {
		ends, st := k.MessagePipeCreate()
		require.Nil(t, st)
		require.Nil(t, k.MessageWrite(ends.H1, []byte{byte(level)}, nil))

		h := HandlerFunc{
			Ready: func(id uint64) {
				atomic.AddInt32(&readyCount, 1)
				if level < depth {
					recurse(level + 1)
					require.NoError(t, r.Run(context.Background()))
				} else {
					r.Quit()
				}
			},
			Error: func(id uint64, outcome Outcome) {
				atomic.AddInt32(&errorCount, 1)
			},
		}
		_, aerr := r.AddHandler(h, ends.H0, khandle.SignalReadable, Forever)
		require.NoError(t, aerr)
	}

	recurse(1)
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, int32(depth), readyCount)
	assert.Equal(t, int32(0), errorCount)
}

func TestPostDelayedTaskOrdering(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	var order []int
	r.PostDelayedTask(func() { order = append(order, 1) }, 0)
	r.PostDelayedTask(func() { order = append(order, 2) }, 0)
	r.PostDelayedTask(func() { order = append(order, 3); r.Quit() }, 0)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestClosePendingHandlersAborted(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	var outcome Outcome
	var fired bool
	h := HandlerFunc{
		Error: func(id uint64, o Outcome) {
			fired = true
			outcome = o
		},
	}
	_, aerr := r.AddHandler(h, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, aerr)

	require.NoError(t, r.Close())
	assert.True(t, fired)
	assert.Equal(t, OutcomeAborted, outcome)
}
