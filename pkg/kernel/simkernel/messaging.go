package simkernel

import (
	"github.com/coreipc/corert/pkg/khandle"
	"github.com/coreipc/corert/pkg/kernel"
	"github.com/coreipc/corert/pkg/metrics"
)

// MessagePipeCreate implements kernel.Kernel.
func (k *Kernel) MessagePipeCreate() (kernel.MessagePipeEndpoints, *khandle.Status) {
	a := &pipeEnd{inbox: make(chan message, 64)}
	b := &pipeEnd{inbox: make(chan message, 64)}

	oa := &object{kind: kindMessagePipe, rights: khandle.RightsAll, pipe: a}
	ob := &object{kind: kindMessagePipe, rights: khandle.RightsAll, pipe: b}
	h0 := k.put(oa)
	h1 := k.put(ob)
	a.peer = h1
	b.peer = h0
	return kernel.MessagePipeEndpoints{H0: h0, H1: h1}, nil
}

// MessageRead implements kernel.Kernel: a non-blocking read of one
// message, returning should_wait if nothing is queued.
func (k *Kernel) MessageRead(h khandle.Raw) ([]byte, []khandle.Raw, *khandle.Status) {
	o, ok := k.get(h)
	if !ok || o.pipe == nil {
		return nil, nil, khandle.NewStatus(khandle.KindInvalidArgument, "message_read", "not a message pipe endpoint")
	}
	select {
	case m, ok := <-o.pipe.inbox:
		if !ok {
			return nil, nil, khandle.NewStatus(khandle.KindFailedPrecondition, "message_read", "peer closed")
		}
		metrics.RecordPipeRead(k.metrics, kindMessagePipe.String(), len(m.data))
		return m.data, m.handles, nil
	default:
		return nil, nil, khandle.NewStatus(khandle.KindShouldWait, "message_read", "no message queued")
	}
}

// MessageWrite implements kernel.Kernel: a non-blocking write of one
// message to h's peer.
func (k *Kernel) MessageWrite(h khandle.Raw, data []byte, handles []khandle.Raw) *khandle.Status {
	o, ok := k.get(h)
	if !ok || o.pipe == nil {
		return khandle.NewStatus(khandle.KindInvalidArgument, "message_write", "not a message pipe endpoint")
	}
	peer, ok := k.get(o.pipe.peer)
	if !ok || peer.pipe == nil {
		return khandle.NewStatus(khandle.KindFailedPrecondition, "message_write", "peer closed")
	}
	msg := message{data: append([]byte(nil), data...), handles: append([]khandle.Raw(nil), handles...)}
	select {
	case peer.pipe.inbox <- msg:
		metrics.RecordPipeWrite(k.metrics, kindMessagePipe.String(), len(data))
		return nil
	default:
		return khandle.NewStatus(khandle.KindResourceExhausted, "message_write", "peer inbox full")
	}
}
