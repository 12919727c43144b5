package requestid_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ErlanBelekov/account-service/internal/requestid"
	"github.com/google/uuid"
)

func TestAccept_KeepsWellFormedID(t *testing.T) {
	if got := requestid.Accept("trace-abc_123"); got != "trace-abc_123" {
		t.Errorf("got %q", got)
	}
}

func TestAccept_ReplacesUnusableID(t *testing.T) {
	cases := map[string]string{
		"empty":    "",
		"too long": strings.Repeat("a", 129),
		"newline":  "abc\ninjected=1",
		"space":    "abc def",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			got := requestid.Accept(in)
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("Accept(%q) = %q, want a fresh UUID", in, got)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if got := requestid.FromContext(context.Background()); got != "" {
		t.Errorf("empty context: got %q", got)
	}
	ctx := requestid.WithRequestID(context.Background(), "rid-1")
	if got := requestid.FromContext(ctx); got != "rid-1" {
		t.Errorf("got %q", got)
	}
}
