package mail_test

import (
	"context"
	netmail "net/mail"
	"testing"

	"mentorship-service/common/logger"
	"mentorship-service/internal/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationMessage(t *testing.T) {
	to := netmail.Address{Name: "Rahim Uddin", Address: "rahim@student.green.ac.bd"}

	msg, err := mail.VerificationMessage(to, "http://localhost/auth/verify?token=abc", "24h0m0s")
	require.NoError(t, err)

	assert.Equal(t, "Verify your email", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Rahim Uddin")
	assert.Contains(t, msg.Text, "http://localhost/auth/verify?token=abc")
	assert.Contains(t, msg.HTML, `href="http://localhost/auth/verify?token=abc"`)
}

func TestConsoleSender(t *testing.T) {
	sender := mail.NewConsoleSender(logger.NewDiscard())

	msg := mail.Message{To: netmail.Address{Address: "a@student.green.ac.bd"}, Subject: "Hi", Text: "body"}
	require.NoError(t, sender.Send(context.Background(), msg))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Hi", sent[0].Subject)
}
