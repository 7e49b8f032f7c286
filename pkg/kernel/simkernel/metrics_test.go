package simkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingKernelMetrics struct {
	created []string
	closed  []string
	writes  []string
	reads   []string
	writeBytes, readBytes int
	outcomes []string
}

func (m *recordingKernelMetrics) RecordHandleCreated(kind string) { m.created = append(m.created, kind) }
func (m *recordingKernelMetrics) RecordHandleClosed(kind string)  { m.closed = append(m.closed, kind) }
func (m *recordingKernelMetrics) RecordPipeWrite(kind string, n int) {
	m.writes = append(m.writes, kind)
	m.writeBytes += n
}
func (m *recordingKernelMetrics) RecordPipeRead(kind string, n int) {
	m.reads = append(m.reads, kind)
	m.readBytes += n
}
func (m *recordingKernelMetrics) RecordWaitSetOutcome(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func TestKernelRecordsHandleLifecycle(t *testing.T) {
	k := New()
	m := &recordingKernelMetrics{}
	k.SetMetrics(m)

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	assert.Equal(t, []string{"message_pipe", "message_pipe"}, m.created)

	require.Nil(t, k.Close(ends.H0))
	require.Nil(t, k.Close(ends.H1))
	assert.Contains(t, m.closed, "message_pipe")
}

func TestKernelRecordsPipeReadWrite(t *testing.T) {
	k := New()
	m := &recordingKernelMetrics{}
	k.SetMetrics(m)

	ends, st := k.MessagePipeCreate()
	require.Nil(t, st)

	require.Nil(t, k.MessageWrite(ends.H1, []byte("hello"), nil))
	assert.Equal(t, []string{"message_pipe"}, m.writes)
	assert.Equal(t, 5, m.writeBytes)

	_, _, st = k.MessageRead(ends.H0)
	require.Nil(t, st)
	assert.Equal(t, []string{"message_pipe"}, m.reads)
	assert.Equal(t, 5, m.readBytes)
}

func TestKernelRecordsDataPipeReadWrite(t *testing.T) {
	k := New()
	m := &recordingKernelMetrics{}
	k.SetMetrics(m)

	ends, st := k.DataPipeCreate(1, 64)
	require.Nil(t, st)

	n, st := k.DataPipeWrite(ends.Producer, []byte("abc"))
	require.Nil(t, st)
	assert.Equal(t, 3, n)
	assert.Contains(t, m.writes, "data_pipe_producer")

	out := make([]byte, 3)
	n, st = k.DataPipeRead(ends.Consumer, out)
	require.Nil(t, st)
	assert.Equal(t, 3, n)
	assert.Contains(t, m.reads, "data_pipe_consumer")
}

func TestKernelNilMetricsDoesNotPanic(t *testing.T) {
	k := New()
	assert.NotPanics(t, func() {
		ends, st := k.MessagePipeCreate()
		require.Nil(t, st)
		require.Nil(t, k.MessageWrite(ends.H1, []byte("x"), nil))
		_, _, _ = k.MessageRead(ends.H0)
		require.Nil(t, k.Close(ends.H0))
		require.Nil(t, k.Close(ends.H1))
	})
}
