package telemetry

import "testing"

func TestInitProfilingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown func")
	}
	if err := shutdown(); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
	if IsProfilingEnabled() {
		t.Fatal("expected profiling to be disabled")
	}
}

func TestParseProfileTypeRejectsUnknown(t *testing.T) {
	if _, err := parseProfileType("not-a-real-profile-type"); err == nil {
		t.Fatal("expected error for unknown profile type")
	}
}

func TestParseProfileTypeAcceptsAllDocumentedTypes(t *testing.T) {
	types := []string{
		"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space",
		"goroutines", "mutex_count", "mutex_duration", "block_count", "block_duration",
	}
	for _, pt := range types {
		if _, err := parseProfileType(pt); err != nil {
			t.Errorf("parseProfileType(%q) returned error: %v", pt, err)
		}
	}
}
