package validate

import (
	"strings"
	"testing"
)

func TestUsername(t *testing.T) {
	if err := Username("alice"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	if err := Username(""); err == nil {
		t.Fatal("empty username accepted")
	}
	if err := Username(strings.Repeat("a", 65)); err == nil {
		t.Fatal("oversized username accepted")
	}
	if err := Username(strings.Repeat("a", 64)); err != nil {
		t.Fatalf("max-length username rejected: %v", err)
	}
}

func TestQuestion(t *testing.T) {
	if err := Question("why?"); err != nil {
		t.Fatalf("valid question rejected: %v", err)
	}
	if err := Question(""); err == nil {
		t.Fatal("empty question accepted")
	}
	if err := Question(strings.Repeat("q", 2001)); err == nil {
		t.Fatal("oversized question accepted")
	}
}

func TestNonEmpty(t *testing.T) {
	if err := NonEmpty("field", "x"); err != nil {
		t.Fatalf("non-empty value rejected: %v", err)
	}
	err := NonEmpty("field", "")
	if err == nil {
		t.Fatal("empty value accepted")
	}
	if !strings.Contains(err.Error(), "field") {
		t.Fatalf("error does not name the field: %v", err)
	}
}
