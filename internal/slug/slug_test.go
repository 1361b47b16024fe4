package slug

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Hello World", want: "hello-world"},
		{name: "punctuation collapsed", title: "Go: the  good, the bad & the ugly!", want: "go-the-good-the-bad-the-ugly"},
		{name: "accents folded", title: "Crème brûlée à la française", want: "creme-brulee-a-la-francaise"},
		{name: "leading and trailing separators", title: "  --Draft--  ", want: "draft"},
		{name: "digits kept", title: "Top 10 tips for 2024", want: "top-10-tips-for-2024"},
		{name: "nothing usable", title: "!!!", want: "post"},
		{name: "empty", title: "", want: "post"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMake_Length(t *testing.T) {
	got := Make(strings.Repeat("word ", 50))
	if len(got) > MaxLength {
		t.Errorf("slug too long: %d", len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug ends with separator: %q", got)
	}
	if !Valid(got) {
		t.Errorf("generated slug is not valid: %q", got)
	}
}

func TestValid(t *testing.T) {
	valid := []string{"a", "hello-world", "top-10"}
	invalid := []string{"", "Hello", "double--dash", "-lead", "trail-", "under_score"}

	for _, s := range valid {
		if !Valid(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if Valid(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"hello": true, "hello-2": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := Unique(context.Background(), "hello", exists)
	if err != nil {
		t.Fatalf("Unique failed: %v", err)
	}
	if got != "hello-3" {
		t.Errorf("Expected hello-3, got %s", got)
	}

	got, _ = Unique(context.Background(), "fresh", exists)
	if got != "fresh" {
		t.Errorf("Expected fresh, got %s", got)
	}
}

func TestUnique_LongBase(t *testing.T) {
	base := strings.Repeat("a", MaxLength)
	exists := func(_ context.Context, s string) (bool, error) { return s == base, nil }

	got, err := Unique(context.Background(), base, exists)
	if err != nil {
		t.Fatalf("Unique failed: %v", err)
	}
	if len(got) > MaxLength || !strings.HasSuffix(got, "-2") {
		t.Errorf("unexpected slug %q", got)
	}
}

func TestUnique_Errors(t *testing.T) {
	boom := errors.New("db down")
	_, err := Unique(context.Background(), "x", func(context.Context, string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped lookup error, got %v", err)
	}

	_, err = Unique(context.Background(), "x", func(context.Context, string) (bool, error) { return true, nil })
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got %v", err)
	}
}
