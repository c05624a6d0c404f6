package mailer_test

import (
	"context"
	"sync"
	"testing"

	"boutique/pkg/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string // "to|subject"
}

func (s *recordingSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

func TestRender(t *testing.T) {
	body, err := mailer.Render(mailer.KindOrderConfirmation, mailer.Data{
		CustomerName: "Priya",
		OrderNumber:  "ORD123456789012",
		TotalAmount:  2998,
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Priya")
	assert.Contains(t, body, "ORD123456789012")
	assert.Contains(t, body, "2998.00")

	body, err = mailer.Render(mailer.KindVerifyEmail, mailer.Data{
		Username:  "priya",
		VerifyURL: "http://localhost:8080/api/v1/auth/verify-email?token=abc",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "verify-email?token=abc")

	_, err = mailer.Render(mailer.Kind("bogus"), mailer.Data{})
	assert.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	body, err := mailer.Render(mailer.KindWelcome, mailer.Data{
		Username: "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &recordingSender{}
	d := mailer.NewDispatcher(sender, 8)

	d.Enqueue(mailer.KindWelcome, "priya@example.com", mailer.Data{Subject: "Welcome!", Username: "priya"})
	d.Enqueue(mailer.KindAdminNotice, "admin@example.com", mailer.Data{Subject: "New Order", Body: "details"})
	// Empty recipients are silently skipped.
	d.Enqueue(mailer.KindWelcome, "", mailer.Data{Subject: "nobody"})
	d.Close() // drains the queue

	assert.Equal(t, []string{
		"priya@example.com|Welcome!",
		"admin@example.com|New Order",
	}, sender.sent)
}

func TestDispatcherNilSender(t *testing.T) {
	d := mailer.NewDispatcher(nil, 1)
	d.Enqueue(mailer.KindWelcome, "priya@example.com", mailer.Data{Subject: "Welcome!"})
	d.Close()
}
