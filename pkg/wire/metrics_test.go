package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWireMetrics struct {
	encodes     []string
	decodes     []string
	failures    []string
	encodeBytes uint32
}

func (m *recordingWireMetrics) ObserveEncode(structName string, numBytes uint32, _ time.Duration) {
	m.encodes = append(m.encodes, structName)
	m.encodeBytes = numBytes
}
func (m *recordingWireMetrics) ObserveDecode(structName string, _ uint32, _ time.Duration) {
	m.decodes = append(m.decodes, structName)
}
func (m *recordingWireMetrics) RecordValidationFailure(kind string) {
	m.failures = append(m.failures, kind)
}

func TestEncodeObservedRecordsNameAndSize(t *testing.T) {
	buf := NewBuffer(24)
	offset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, offset, StructHeader{NumBytes: 24, Version: 0})

	handles := NewHandleTable(0)
	m := &recordingWireMetrics{}
	require.NoError(t, EncodeObserved(buf, offset, rectDescriptor, handles, m))

	assert.Equal(t, []string{"Rect"}, m.encodes)
	assert.Equal(t, buf.NumBytesUsed(), m.encodeBytes)
}

func TestDecodeObservedRecordsName(t *testing.T) {
	buf := NewBuffer(24)
	offset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, offset, StructHeader{NumBytes: 24, Version: 0})

	handles := NewHandleTable(0)
	m := &recordingWireMetrics{}
	require.NoError(t, DecodeObserved(buf, offset, rectDescriptor, handles, m))

	assert.Equal(t, []string{"Rect"}, m.decodes)
	assert.Empty(t, m.failures)
}

func TestValidateObservedRecordsFailureKind(t *testing.T) {
	buf := NewBuffer(24)
	m := &recordingWireMetrics{}

	err := ValidateObserved(buf, 1, rectDescriptor, 0, m)
	require.Error(t, err)
	require.Len(t, m.failures, 1)
	assert.Equal(t, "misaligned-object", m.failures[0])
}

func TestWireObservedFunctionsToleratesNilMetrics(t *testing.T) {
	buf := NewBuffer(24)
	offset, ok := buf.Alloc(24)
	require.True(t, ok)
	WriteStructHeader(buf, offset, StructHeader{NumBytes: 24, Version: 0})

	handles := NewHandleTable(0)
	assert.NotPanics(t, func() {
		_ = EncodeObserved(buf, offset, rectDescriptor, handles, nil)
		_ = DecodeObserved(buf, offset, rectDescriptor, handles, nil)
		_ = ValidateObserved(buf, 1, rectDescriptor, 0, nil)
	})
}
