package replay

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestPacerPlaysInOrder(t *testing.T) {
	lines := []string{"Turn 1", "Sparky used Thunderbolt!", "Tidefin fainted!"}
	var got []string
	err := Pacer{Delay: time.Millisecond}.Play(context.Background(), lines, func(i int, line string) error {
		if i != len(got) {
			t.Fatalf("index = %d, want %d", i, len(got))
		}
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Fatalf("lines = %v, want %v", got, lines)
	}
}

func TestPacerWaitsBetweenLines(t *testing.T) {
	start := time.Now()
	err := Pacer{Delay: 20 * time.Millisecond}.Play(context.Background(), []string{"a", "b", "c"}, func(int, string) error { return nil })
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("elapsed = %v, want at least 40ms", elapsed)
	}
}

func TestPacerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var emitted int
	err := Pacer{Delay: time.Hour}.Play(ctx, []string{"a", "b"}, func(int, string) error {
		emitted++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if emitted != 1 {
		t.Fatalf("emitted = %d, want 1", emitted)
	}
}

func TestPacerStopsOnEmitError(t *testing.T) {
	boom := errors.New("closed")
	err := Pacer{}.Play(context.Background(), []string{"a", "b"}, func(int, string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestClampDelay(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{-time.Second, 0},
		{time.Second, time.Second},
		{time.Minute, MaxDelay},
	}
	for _, tt := range tests {
		if got := clampDelay(tt.in); got != tt.want {
			t.Fatalf("clampDelay(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
