package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/certificate-automator/internal/types"
)

type fakeTransport struct {
	sent       []Message
	failures   []error
	callsSoFar int
}

func (f *fakeTransport) Send(ctx context.Context, msg Message) error {
	defer func() { f.callsSoFar++ }()
	if f.callsSoFar < len(f.failures) && f.failures[f.callsSoFar] != nil {
		return f.failures[f.callsSoFar]
	}
	f.sent = append(f.sent, msg)
	return nil
}

func sampleSubmission() types.Submission {
	return types.Submission{
		FullName:       "Maria Silva",
		Email:          "maria@example.com",
		CourseName:     "Go Avançado",
		CourseDuration: "40 horas",
	}
}

func TestSendCertificateEmail(t *testing.T) {
	t.Run("happy path with from alias", func(t *testing.T) {
		transport := &fakeTransport{}
		sender := NewSender(transport, Organization{Name: "Escola Exemplo"}, "instrutor@example.com", "bot@example.com")

		err := sender.SendCertificateEmail(context.Background(), sampleSubmission(), sampleRecord(), "https://www.linkedin.com/profile/add?x=1")
		require.NoError(t, err)
		require.Len(t, transport.sent, 1)

		msg := transport.sent[0]
		assert.Equal(t, "maria@example.com", msg.To)
		assert.Equal(t, "Seu Certificado de Go Avançado", msg.Subject)
		assert.Equal(t, "Escola Exemplo", msg.SenderName)
		assert.Equal(t, "instrutor@example.com", msg.ReplyTo)
		assert.Equal(t, "instrutor@example.com", msg.From)
		assert.Contains(t, msg.HTMLBody, "Maria Silva")
		assert.Contains(t, msg.HTMLBody, "40 horas")
		assert.Contains(t, msg.HTMLBody, "10/01/2024")
		assert.Contains(t, msg.TextBody, "https://drive.google.com/file/d/xyz/view")
		assert.Contains(t, msg.TextBody, "40 horas")
		assert.Contains(t, msg.TextBody, "Data de emissão: 10/01/2024")
	})

	t.Run("no from alias when instructor is the executing account", func(t *testing.T) {
		transport := &fakeTransport{}
		sender := NewSender(transport, Organization{}, "bot@example.com", "bot@example.com")

		require.NoError(t, sender.SendCertificateEmail(context.Background(), sampleSubmission(), sampleRecord(), ""))
		require.Len(t, transport.sent, 1)
		assert.Empty(t, transport.sent[0].From)
		assert.Equal(t, "Certificate Issuer", transport.sent[0].SenderName)
	})

	t.Run("invalid from retries once without alias", func(t *testing.T) {
		transport := &fakeTransport{
			failures: []error{&InvalidFromError{From: "instrutor@example.com", Err: errors.New("rejected")}},
		}
		sender := NewSender(transport, Organization{}, "instrutor@example.com", "bot@example.com")

		require.NoError(t, sender.SendCertificateEmail(context.Background(), sampleSubmission(), sampleRecord(), ""))
		require.Len(t, transport.sent, 1)
		assert.Empty(t, transport.sent[0].From)
		assert.Equal(t, 2, transport.callsSoFar)
	})

	t.Run("other transport errors surface", func(t *testing.T) {
		transport := &fakeTransport{failures: []error{errors.New("network down")}}
		sender := NewSender(transport, Organization{}, "", "")

		err := sender.SendCertificateEmail(context.Background(), sampleSubmission(), sampleRecord(), "")
		assert.ErrorContains(t, err, "network down")
	})

	t.Run("invalid recipient rejected before send", func(t *testing.T) {
		transport := &fakeTransport{}
		sender := NewSender(transport, Organization{}, "", "")

		sub := sampleSubmission()
		sub.Email = "not-an-address"
		err := sender.SendCertificateEmail(context.Background(), sub, sampleRecord(), "")
		assert.Error(t, err)
		assert.Empty(t, transport.sent)
	})
}
