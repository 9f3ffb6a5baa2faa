package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOTPMessage(t *testing.T) {
	m := OTPMessage("portal@example.com", "a@x.com", "123456", 5*time.Minute)

	assert.Equal(t, "a@x.com", m.To)
	assert.Equal(t, "Hostel Management OTP Verification", m.Subject)
	assert.Contains(t, m.Text, "123456")
	assert.Contains(t, m.Text, "5 minutes")
	assert.Contains(t, m.HTML, "<b>123456</b>")
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	msg := buildMessage(Message{
		From:    "portal@example.com",
		To:      "a@x.com\r\nBcc: evil@x.com",
		Subject: "hi",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.NotContains(t, out, "\r\nBcc:")
	assert.Contains(t, out, "text/plain")
	assert.Contains(t, out, "text/html")
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := LogSender{Log: zap.New(core)}

	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.com", Subject: "s", Text: "code 1"}))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "mock email", entry.Message)
	assert.True(t, strings.Contains(entry.ContextMap()["body"].(string), "code 1"))
}
