package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return s.err
}

func TestSMTPNotifier_SendTemporaryPassword(t *testing.T) {
	sender := &recordingSender{}
	n := NewSMTPNotifierWithSender("noreply@example.com", sender)

	err := n.SendTemporaryPassword(context.Background(), TemporaryPassword{
		Name: "<Sam>", Email: "sam@example.com", Password: "Tmp-123",
	})
	require.NoError(t, err)
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"sam@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))

	var body bytes.Buffer
	_, err = m.WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "Tmp-123")
	assert.NotContains(t, body.String(), "<Sam>")
}

func TestSMTPNotifier_Failures(t *testing.T) {
	n := NewSMTPNotifierWithSender("noreply@example.com", &recordingSender{err: errors.New("connection refused")})
	assert.Error(t, n.SendTemporaryPassword(context.Background(), TemporaryPassword{Email: "a@example.com"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &recordingSender{}
	assert.ErrorIs(t, NewSMTPNotifierWithSender("x", sender).SendTemporaryPassword(ctx, TemporaryPassword{}), context.Canceled)
	assert.Empty(t, sender.messages)
}

func TestDisabled(t *testing.T) {
	err := Disabled{}.SendTemporaryPassword(context.Background(), TemporaryPassword{})
	assert.ErrorIs(t, err, ErrNoChannel)
}
