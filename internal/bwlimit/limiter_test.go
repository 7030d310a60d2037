package bwlimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitWithinBurstSucceedsImmediately(t *testing.T) {
	l := NewLimiter(1000, 500)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx, "peer1", 100); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitChunksLargerThanBurst(t *testing.T) {
	l := NewLimiter(100000, 50)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx, "peer1", 200); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestPerPeerIsolation(t *testing.T) {
	l := NewLimiter(10, 10)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx, "a", 10); err != nil {
		t.Fatalf("peer a: %v", err)
	}
	if err := l.Wait(ctx, "b", 10); err != nil {
		t.Fatalf("peer b should have its own budget: %v", err)
	}
}
