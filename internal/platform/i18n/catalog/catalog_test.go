package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}
	if got := bundle.Locales(); len(got) == 0 || got[0] != BaseLocale {
		t.Fatalf("locales = %v, want base locale first", got)
	}
	if got := len(bundle.NamespaceMessages("pt-BR", NamespaceBattle)); got == 0 {
		t.Fatalf("expected pt-BR battle namespace messages")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/errors.yaml"), `locale: "pt-BR"
namespace: "errors"
messages:
  "UNKNOWN": "Algo deu errado."
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsMismatchedPath(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "pt-BR"
namespace: "errors"
messages:
  "UNKNOWN": "x"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRejectsVerbMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "UNKNOWN": "x"
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/battle.yaml"), `locale: "pt-BR"
namespace: "battle"
messages:
  "%s fainted!": "desmaiou!"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected verb count error")
	}
}

func TestCountVerbs(t *testing.T) {
	tests := []struct {
		format string
		want   int
	}{
		{"Turn %d", 1},
		{"%s took %d damage! (%d/%d HP)", 4},
		{"100%% sure", 0},
		{"%[2]s de %[1]s", 2},
		{"", 0},
	}
	for _, tt := range tests {
		if got := countVerbs(tt.format); got != tt.want {
			t.Fatalf("countVerbs(%q) = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestResolveLocale(t *testing.T) {
	bundle := Default()
	tests := []struct {
		requested string
		want      string
	}{
		{"pt-BR", "pt-BR"},
		{"pt", "pt-BR"},
		{"en-US", "en-US"},
		{"", BaseLocale},
		{"fr-FR", BaseLocale},
	}
	for _, tt := range tests {
		if got := bundle.ResolveLocale(tt.requested); got != tt.want {
			t.Fatalf("ResolveLocale(%q) = %q, want %q", tt.requested, got, tt.want)
		}
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", NamespaceErrors)
	if resolved != "en-US" {
		t.Fatalf("resolved locale = %q, want en-US", resolved)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestMessageFallsBackToBase(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "UNKNOWN": "Something went wrong."
  "INTERNAL": "Internal."
`)
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/errors.yaml"), `locale: "pt-BR"
namespace: "errors"
messages:
  "UNKNOWN": "Algo deu errado."
`)
	bundle, err := LoadFromFS(os.DirFS(tempDir))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, ok := bundle.Message("pt-BR", NamespaceErrors, "UNKNOWN"); !ok || got != "Algo deu errado." {
		t.Fatalf("pt-BR UNKNOWN = %q, %v", got, ok)
	}
	if got, ok := bundle.Message("pt-BR", NamespaceErrors, "INTERNAL"); !ok || got != "Internal." {
		t.Fatalf("pt-BR INTERNAL = %q, %v, want base fallback", got, ok)
	}
	if _, ok := bundle.Message("pt-BR", NamespaceErrors, "MISSING"); ok {
		t.Fatal("expected missing key")
	}
}

func TestPrinterTranslatesBattleFormats(t *testing.T) {
	bundle := Default()

	pt := bundle.Printer("pt-BR")
	if got := pt.Sprintf("Turn %d", 3); got != "Turno 3" {
		t.Fatalf("pt-BR turn = %q, want %q", got, "Turno 3")
	}
	if got := pt.Sprintf("%s's %s rose!", "Alpha", "Ataque"); got != "Ataque de Alpha aumentou!" {
		t.Fatalf("pt-BR stat rose = %q", got)
	}

	en := bundle.Printer("en-US")
	if got := en.Sprintf("Turn %d", 3); got != "Turn 3" {
		t.Fatalf("en-US turn = %q, want %q", got, "Turn 3")
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
