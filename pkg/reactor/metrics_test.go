package reactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel/simkernel"
)

type recordingMetrics struct {
	handlerCounts []int
	dispatches    []string
	tasksPosted   int
	taskExecs     int
	waits         int
}

func (m *recordingMetrics) RecordHandlerCount(n int)                     { m.handlerCounts = append(m.handlerCounts, n) }
func (m *recordingMetrics) ObserveWait(time.Duration, int)               { m.waits++ }
func (m *recordingMetrics) RecordDispatch(outcome string)                { m.dispatches = append(m.dispatches, outcome) }
func (m *recordingMetrics) RecordTaskPosted()                            { m.tasksPosted++ }
func (m *recordingMetrics) ObserveTaskExecution(time.Duration)           { m.taskExecs++ }

func TestReactorRecordsMetricsOnReadyAndRemove(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	m := &recordingMetrics{}
	r.SetMetrics(m)

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)
	require.Nil(t, k.MessageWrite(ends.H1, []byte("hi"), nil))

	h := HandlerFunc{Ready: func(id uint64) { r.Quit() }}
	_, err = r.AddHandler(h, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, m.dispatches, "ready")
	assert.NotEmpty(t, m.handlerCounts)
	assert.True(t, m.waits > 0)
}

func TestReactorRecordsTaskPosted(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	m := &recordingMetrics{}
	r.SetMetrics(m)

	r.PostDelayedTask(func() {}, 0)
	require.NoError(t, r.RunUntilIdle(context.Background()))

	assert.Equal(t, 1, m.tasksPosted)
	assert.Equal(t, 1, m.taskExecs)
}

func TestReactorNilMetricsDoesNotPanic(t *testing.T) {
	k := simkernel.New()
	r, err := New(k)
	require.NoError(t, err)
	defer r.Close()

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)
	require.Nil(t, k.MessageWrite(ends.H1, []byte("hi"), nil))

	h := HandlerFunc{Ready: func(id uint64) { r.Quit() }}
	_, err = r.AddHandler(h, ends.H0, khandle.SignalReadable, Forever)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		require.NoError(t, r.Run(context.Background()))
	})
}
