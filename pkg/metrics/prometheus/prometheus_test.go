package prometheus

import (
	"testing"
	"time"

	"github.com/coreipc/corert/pkg/metrics"
)

func TestReactorMetricsRecordsAgainstRegistry(t *testing.T) {
	defer metrics.Reset()
	metrics.InitRegistry()

	m := metrics.NewReactorMetrics()
	if m == nil {
		t.Fatal("expected non-nil ReactorMetrics once enabled")
	}

	m.RecordHandlerCount(5)
	m.ObserveWait(2*time.Millisecond, 3)
	m.RecordDispatch("ready")
	m.RecordTaskPosted()
	m.ObserveTaskExecution(time.Millisecond)

	mfs, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("failed to gather registry: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}

func TestWireMetricsRecordsAgainstRegistry(t *testing.T) {
	defer metrics.Reset()
	metrics.InitRegistry()

	m := metrics.NewWireMetrics()
	if m == nil {
		t.Fatal("expected non-nil WireMetrics once enabled")
	}

	m.ObserveEncode("EchoRequest", 64, time.Microsecond)
	m.ObserveDecode("EchoRequest", 64, time.Microsecond)
	m.RecordValidationFailure("illegal_handle")

	mfs, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("failed to gather registry: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}

func TestKernelMetricsRecordsAgainstRegistry(t *testing.T) {
	defer metrics.Reset()
	metrics.InitRegistry()

	m := metrics.NewKernelMetrics()
	if m == nil {
		t.Fatal("expected non-nil KernelMetrics once enabled")
	}

	m.RecordHandleCreated("message_pipe")
	m.RecordHandleClosed("message_pipe")
	m.RecordPipeWrite("message_pipe", 128)
	m.RecordPipeRead("message_pipe", 128)
	m.RecordWaitSetOutcome("ok")

	mfs, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("failed to gather registry: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}
