package notification

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestEncodeMessage(t *testing.T) {
	raw, err := encodeMessage(Message{
		To:         "maria@example.com",
		Subject:    "Seu Certificado de Go Avançado",
		TextBody:   "texto",
		HTMLBody:   "<p>html</p>",
		SenderName: "Escola Exemplo",
		ReplyTo:    "instrutor@example.com",
		From:       "instrutor@example.com",
	})
	require.NoError(t, err)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	body := string(decoded)

	assert.Contains(t, body, "To: maria@example.com")
	assert.Contains(t, body, "From: Escola Exemplo <instrutor@example.com>")
	assert.Contains(t, body, "Reply-To: instrutor@example.com")
	assert.Contains(t, body, "Subject: Seu Certificado de Go Avançado")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "texto")
	assert.Contains(t, body, "<p>html</p>")
}

func TestIsInvalidFrom(t *testing.T) {
	assert.True(t, isInvalidFrom(&googleapi.Error{Code: 400, Message: "Invalid from header"}))
	assert.True(t, isInvalidFrom(&googleapi.Error{Code: 403, Message: "Delegation denied for bot@example.com"}))
	assert.False(t, isInvalidFrom(&googleapi.Error{Code: 400, Message: "Bad request"}))
	assert.False(t, isInvalidFrom(&googleapi.Error{Code: 500, Message: "Backend error"}))
	assert.False(t, isInvalidFrom(errors.New("network down")))
}
