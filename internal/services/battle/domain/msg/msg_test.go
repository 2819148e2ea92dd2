package msg

import (
	"strings"
	"testing"
)

type upperPrinter struct{}

func (upperPrinter) Sprintf(format string, args ...any) string {
	return strings.ToUpper(New(format, args...).String())
}

func TestRender(t *testing.T) {
	m := New(MoveUsed, "Sparkit", "Spark")
	if got := m.String(); got != "Sparkit used Spark!" {
		t.Fatalf("String = %q", got)
	}
	if got := m.Render(upperPrinter{}); got != "SPARKIT USED SPARK!" {
		t.Fatalf("Render = %q", got)
	}
	if got := (Message{}).Render(upperPrinter{}); got != "" {
		t.Fatalf("empty render = %q, want empty", got)
	}
}

func TestFormatsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range Formats() {
		if seen[f] {
			t.Fatalf("duplicate format %q", f)
		}
		seen[f] = true
	}
}
