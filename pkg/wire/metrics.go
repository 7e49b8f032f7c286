package wire

import (
	"time"

	"github.com/coreipc/corert/pkg/metrics"
)

// EncodeObserved wraps Encode, recording its duration and the buffer's
// total byte length against m (a nil m disables recording). Use this at
// call sites that already know which StructDescriptor they are encoding;
// Encode itself stays metrics-free so its recursive helpers need no
// extra plumbing.
func EncodeObserved(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable, m metrics.WireMetrics) error {
	start := time.Now()
	err := Encode(buf, offset, desc, handles)
	metrics.ObserveEncode(m, desc.Name, uint32(len(buf.Bytes())), time.Since(start))
	return err
}

// DecodeObserved wraps Decode the same way EncodeObserved wraps Encode.
func DecodeObserved(buf *Buffer, offset uint32, desc *StructDescriptor, handles *HandleTable, m metrics.WireMetrics) error {
	start := time.Now()
	err := Decode(buf, offset, desc, handles)
	metrics.ObserveDecode(m, desc.Name, uint32(len(buf.Bytes())), time.Since(start))
	if err != nil {
		metrics.RecordValidationFailure(m, failureKindFor(err))
	}
	return err
}

// ValidateObserved wraps Validate, recording a validation-failure metric
// keyed by the precise FailureKind when validation rejects rootOffset.
func ValidateObserved(buf *Buffer, rootOffset uint32, desc *StructDescriptor, handleCount uint32, m metrics.WireMetrics) error {
	err := Validate(buf, rootOffset, desc, handleCount)
	if err != nil {
		metrics.RecordValidationFailure(m, failureKindFor(err))
	}
	return err
}

func failureKindFor(err error) string {
	if ve, ok := err.(*ValidationError); ok {
		return ve.Kind.String()
	}
	if _, ok := err.(*EncodeError); ok {
		return "encode-error"
	}
	return "unknown-failure"
}
