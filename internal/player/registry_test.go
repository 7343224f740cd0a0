package player

import (
	"testing"

	"go.uber.org/zap"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	clock := newFakeClock(0, 300)
	ch := newFakeChannel()

	proc, err := reg.Create("s1", clock, ch, &collectSink{}, testConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, ok := reg.Get("s1")
	if !ok || got != proc {
		t.Fatal("Expected Get to return the created processor")
	}

	if _, err := reg.Create("s1", clock, newFakeChannel(), &collectSink{}, testConfig()); err == nil {
		t.Error("Expected duplicate Create to fail")
	}

	if err := reg.Destroy("s1"); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if !ch.wasClosed() {
		t.Error("Expected Destroy to tear down the channel")
	}
	if _, ok := reg.Get("s1"); ok {
		t.Error("Expected the processor to be forgotten")
	}
	if err := reg.Destroy("s1"); err == nil {
		t.Error("Expected Destroy of an unknown session to fail")
	}
}

func TestRegistryShutdown(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	ch1 := newFakeChannel()
	ch2 := newFakeChannel()

	if _, err := reg.Create("s1", newFakeClock(0, 300), ch1, &collectSink{}, testConfig()); err != nil {
		t.Fatalf("Create s1 failed: %v", err)
	}
	if _, err := reg.Create("s2", newFakeClock(0, 300), ch2, &collectSink{}, testConfig()); err != nil {
		t.Fatalf("Create s2 failed: %v", err)
	}

	reg.Shutdown()

	if !ch1.wasClosed() || !ch2.wasClosed() {
		t.Error("Expected Shutdown to close every processor's channel")
	}
	if _, ok := reg.Get("s1"); ok {
		t.Error("Expected no processors after Shutdown")
	}
}
