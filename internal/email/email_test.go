package email_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/ErlanBelekov/account-service/internal/email"
)

func TestNewSender_NoAPIKey_LogsInstead(t *testing.T) {
	var buf bytes.Buffer
	sender := email.NewSender("", "", slog.New(slog.NewTextHandler(&buf, nil)))

	if _, ok := sender.(*email.LogSender); !ok {
		t.Fatalf("sender = %T, want *email.LogSender", sender)
	}
	if err := sender.Send(context.Background(), "a@b.co", "hello", "<p>hi</p>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "to=a@b.co") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestNewSender_WithAPIKey_UsesResend(t *testing.T) {
	sender := email.NewSender("re_test", "accounts@example.com", slog.Default())
	if _, ok := sender.(*email.ResendSender); !ok {
		t.Errorf("sender = %T, want *email.ResendSender", sender)
	}
}

func TestWelcome_EscapesName(t *testing.T) {
	subject, body := email.Welcome("<script>Ada</script>")
	if subject == "" {
		t.Error("empty subject")
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("name not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;Ada") {
		t.Errorf("body = %s", body)
	}
}
