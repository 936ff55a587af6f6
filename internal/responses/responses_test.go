package responses

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "responses.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write responses file: %v", err)
	}
	return path
}

func TestNewFileProvider_LoadsFile(t *testing.T) {
	path := writeFile(t, `{"responses": ["Yes.", "No."]}`)
	p := NewFileProvider(path, zerolog.Nop())

	if got := len(p.Answers()); got != 2 {
		t.Fatalf("expected 2 answers, got %d", got)
	}
	answer := p.RandomAnswer()
	if answer != "Yes." && answer != "No." {
		t.Fatalf("answer %q not from loaded set", answer)
	}
}

func TestNewFileProvider_MissingFileFallsBack(t *testing.T) {
	p := NewFileProvider(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	if p.RandomAnswer() == "" {
		t.Fatal("expected a fallback answer")
	}
	if len(p.Answers()) != len(fallbackAnswers) {
		t.Fatalf("expected fallback set, got %d answers", len(p.Answers()))
	}
}

func TestNewFileProvider_InvalidJSONFallsBack(t *testing.T) {
	path := writeFile(t, `{broken`)
	p := NewFileProvider(path, zerolog.Nop())
	if len(p.Answers()) != len(fallbackAnswers) {
		t.Fatalf("expected fallback set, got %d answers", len(p.Answers()))
	}
}

func TestNewFileProvider_EmptyListFallsBack(t *testing.T) {
	path := writeFile(t, `{"responses": []}`)
	p := NewFileProvider(path, zerolog.Nop())
	if len(p.Answers()) != len(fallbackAnswers) {
		t.Fatalf("expected fallback set, got %d answers", len(p.Answers()))
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]string{"only one"})
	for i := 0; i < 5; i++ {
		if got := p.RandomAnswer(); got != "only one" {
			t.Fatalf("unexpected answer: %q", got)
		}
	}
}

func TestAnswers_ReturnsCopy(t *testing.T) {
	p := NewStaticProvider([]string{"a", "b"})
	answers := p.Answers()
	answers[0] = "mutated"
	if p.Answers()[0] != "a" {
		t.Fatal("Answers leaked internal slice")
	}
}
