package metrics

import "testing"

func TestDisabledByDefault(t *testing.T) {
	Reset()
	if IsEnabled() {
		t.Fatal("expected metrics to be disabled before InitRegistry")
	}
	if GetRegistry() != nil {
		t.Fatal("expected nil registry before InitRegistry")
	}
}

func TestInitRegistryEnables(t *testing.T) {
	defer Reset()

	reg := InitRegistry()
	if reg == nil {
		t.Fatal("expected InitRegistry to return a non-nil registry")
	}
	if !IsEnabled() {
		t.Fatal("expected metrics to be enabled after InitRegistry")
	}
	if GetRegistry() != reg {
		t.Fatal("expected GetRegistry to return the registry created by InitRegistry")
	}
}

func TestNilSafeWrappersTolerateNilMetrics(t *testing.T) {
	Reset()

	// None of these should panic when the underlying metrics are nil,
	// which is the default zero-overhead state.
	RecordHandlerCount(nil, 3)
	ObserveWait(nil, 0, 0)
	RecordDispatch(nil, "ready")
	RecordTaskPosted(nil)
	ObserveTaskExecution(nil, 0)
	ObserveEncode(nil, "Foo", 16, 0)
	ObserveDecode(nil, "Foo", 16, 0)
	RecordValidationFailure(nil, "illegal_handle")
	RecordHandleCreated(nil, "message_pipe")
	RecordHandleClosed(nil, "message_pipe")
	RecordPipeWrite(nil, "message_pipe", 8)
	RecordPipeRead(nil, "message_pipe", 8)
	RecordWaitSetOutcome(nil, "ok")
}

func TestNewMetricsReturnNilWhenDisabled(t *testing.T) {
	Reset()

	if m := NewReactorMetrics(); m != nil {
		t.Fatal("expected nil ReactorMetrics when metrics disabled")
	}
	if m := NewWireMetrics(); m != nil {
		t.Fatal("expected nil WireMetrics when metrics disabled")
	}
	if m := NewKernelMetrics(); m != nil {
		t.Fatal("expected nil KernelMetrics when metrics disabled")
	}
}
