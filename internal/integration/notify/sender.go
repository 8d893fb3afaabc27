// Package notify delivers household notifications by e-mail via Resend.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/resend/resend-go/v2"

	domainerror "github.com/household-hub/companion/internal/domain/error"
)

// Message is a rendered e-mail ready to send.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers rendered messages and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendSender implements Sender using Resend.
type ResendSender struct {
	client    *resend.Client
	fromName  string
	fromEmail string
}

// NewResendSender creates a new Resend sender.
func NewResendSender(apiKey, fromName, fromEmail string) *ResendSender {
	return &ResendSender{
		client:    resend.NewClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// Send sends an email via Resend.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	resp, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		if isPermanentError(err) {
			return "", domainerror.NewNotifyError(domainerror.ErrCodePermanentNotifyFailure, "permanent notification failure", err)
		}
		return "", domainerror.NewNotifyError(domainerror.ErrCodeTemporaryNotifyFailure, "temporary notification failure", err)
	}

	return resp.Id, nil
}

// isPermanentError reports whether a Resend error should not be retried.
// 401, 403 and 422 are permanent; rate limits and 5xx are not.
func isPermanentError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"401", "403", "422", "unauthorized", "forbidden", "validation", "invalid", "bad request"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// MockSender records messages instead of sending them.
type MockSender struct {
	mu          sync.Mutex
	sent        []Message
	failures    int
	failErr     error
	isPermanent bool
}

// NewMockSender creates a new mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send implements Sender.
func (m *MockSender) Send(ctx context.Context, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failures != 0 {
		if m.failures > 0 {
			m.failures--
		}
		code := domainerror.ErrCodeTemporaryNotifyFailure
		if m.isPermanent {
			code = domainerror.ErrCodePermanentNotifyFailure
		}
		return "", domainerror.NewNotifyError(code, "mock failure", m.failErr)
	}

	m.sent = append(m.sent, msg)
	return fmt.Sprintf("mock-%d", len(m.sent)), nil
}

// FailNext makes the next n sends fail. A negative n fails every send.
func (m *MockSender) FailNext(n int, err error, permanent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
	m.failErr = err
	m.isPermanent = permanent
}

// Sent returns a copy of the delivered messages.
func (m *MockSender) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// Reset clears delivered messages and failure configuration.
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
	m.failures = 0
	m.failErr = nil
	m.isPermanent = false
}

var (
	_ Sender = (*ResendSender)(nil)
	_ Sender = (*MockSender)(nil)
)
