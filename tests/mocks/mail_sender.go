package mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/valueobject/mails"
)

type MockMailSender struct {
	mu        sync.Mutex
	sentMails []mails.Payload
	failWith  error
}

func NewMockMailSender() *MockMailSender {
	return &MockMailSender{
		sentMails: make([]mails.Payload, 0),
	}
}

func (m *MockMailSender) SendMail(ctx context.Context, payload mails.Payload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}

	m.sentMails = append(m.sentMails, mails.Payload{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
	fmt.Printf("Mock mail sent to %s with subject: %s\n", payload.To, payload.Subject)
	return nil
}

// FailWith makes every subsequent SendMail return the given message as
// an error, for exercising the delivery failure path.
func (m *MockMailSender) FailWith(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = errors.New(msg)
}

func (m *MockMailSender) GetSentMails() []mails.Payload {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]mails.Payload{}, m.sentMails...)
}

func (m *MockMailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sentMails = make([]mails.Payload, 0)
	m.failWith = nil
}

func (m *MockMailSender) AssertMailSent(t *testing.T, email, subject string) {
	t.Helper()

	for _, mail := range m.GetSentMails() {
		if mail.To == email && strings.Contains(mail.Subject, subject) {
			return
		}
	}
	t.Errorf("Expected mail to %s with subject containing %s not found", email, subject)
}
