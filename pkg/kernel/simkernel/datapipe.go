package simkernel

import (
	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/metrics"
)

// DataPipeCreate implements kernel.Kernel: a unidirectional byte stream
// backed by a fixed-capacity ring buffer shared between producer and
// consumer ends.
func (k *Kernel) DataPipeCreate(elemSize, capacity int) (kernel.DataPipeEndpoints, *khandle.Status) {
	if elemSize <= 0 || capacity <= 0 {
		return kernel.DataPipeEndpoints{}, khandle.NewStatus(khandle.KindInvalidArgument, "data_pipe_create", "elemSize and capacity must be positive")
	}
	shared := &dataPipeShared{
		buf:      make([]byte, 0, elemSize*capacity),
		elemSize: elemSize,
		cap:      elemSize * capacity,
	}
	producer := k.put(&object{kind: kindDataPipeProducer, rights: khandle.RightsAll, dataShared: shared, dataRole: kindDataPipeProducer})
	consumer := k.put(&object{kind: kindDataPipeConsumer, rights: khandle.RightsAll, dataShared: shared, dataRole: kindDataPipeConsumer})
	return kernel.DataPipeEndpoints{Producer: producer, Consumer: consumer}, nil
}

// DataPipeWrite implements kernel.Kernel: non-blocking, returns
// should_wait if the pipe is currently full.
func (k *Kernel) DataPipeWrite(h khandle.Raw, data []byte) (int, *khandle.Status) {
	o, ok := k.get(h)
	if !ok || o.dataShared == nil || o.dataRole != kindDataPipeProducer {
		return 0, khandle.NewStatus(khandle.KindInvalidArgument, "data_pipe_write", "not a producer endpoint")
	}
	s := o.dataShared
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, khandle.NewStatus(khandle.KindFailedPrecondition, "data_pipe_write", "consumer closed")
	}
	free := s.cap - len(s.buf)
	if free == 0 {
		return 0, khandle.NewStatus(khandle.KindShouldWait, "data_pipe_write", "pipe full")
	}
	n := len(data)
	if n > free {
		n = free
	}
	s.buf = append(s.buf, data[:n]...)
	metrics.RecordPipeWrite(k.metrics, kindDataPipeProducer.String(), n)
	return n, nil
}

// DataPipeRead implements kernel.Kernel: non-blocking, returns
// should_wait if the pipe is currently empty.
func (k *Kernel) DataPipeRead(h khandle.Raw, out []byte) (int, *khandle.Status) {
	o, ok := k.get(h)
	if !ok || o.dataShared == nil || o.dataRole != kindDataPipeConsumer {
		return 0, khandle.NewStatus(khandle.KindInvalidArgument, "data_pipe_read", "not a consumer endpoint")
	}
	s := o.dataShared
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		if s.closed {
			return 0, khandle.NewStatus(khandle.KindFailedPrecondition, "data_pipe_read", "producer closed")
		}
		return 0, khandle.NewStatus(khandle.KindShouldWait, "data_pipe_read", "pipe empty")
	}
	n := copy(out, s.buf)
	s.buf = s.buf[n:]
	metrics.RecordPipeRead(k.metrics, kindDataPipeConsumer.String(), n)
	return n, nil
}
