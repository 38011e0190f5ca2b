package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// GmailTransport sends mail through the Gmail API as the authenticated user.
type GmailTransport struct {
	svc *gmail.Service
}

// NewGmailTransport wraps a Gmail service.
func NewGmailTransport(svc *gmail.Service) *GmailTransport {
	return &GmailTransport{svc: svc}
}

// AccountEmail returns the address of the authenticated account.
func (t *GmailTransport) AccountEmail(ctx context.Context) (string, error) {
	profile, err := t.svc.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("reading gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// Send builds an RFC 822 multipart/alternative message and dispatches it.
// A rejection of the From alias surfaces as InvalidFromError so the sender
// can retry without it.
func (t *GmailTransport) Send(ctx context.Context, msg Message) error {
	raw, err := encodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	_, err = t.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		if isInvalidFrom(err) && msg.From != "" {
			return &InvalidFromError{From: msg.From, Err: err}
		}
		return fmt.Errorf("gmail send: %w", err)
	}
	return nil
}

func encodeMessage(msg Message) (string, error) {
	var body strings.Builder
	mw := multipart.NewWriter(&body)

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return "", err
	}
	fmt.Fprint(textPart, msg.TextBody)

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return "", err
	}
	fmt.Fprint(htmlPart, msg.HTMLBody)

	if err := mw.Close(); err != nil {
		return "", err
	}

	var headers strings.Builder
	headers.WriteString("To: " + msg.To + "\r\n")
	if msg.From != "" {
		headers.WriteString(fmt.Sprintf("From: %s <%s>\r\n", msg.SenderName, msg.From))
	} else if msg.SenderName != "" {
		headers.WriteString("From: " + msg.SenderName + "\r\n")
	}
	if msg.ReplyTo != "" {
		headers.WriteString("Reply-To: " + msg.ReplyTo + "\r\n")
	}
	headers.WriteString("Subject: " + msg.Subject + "\r\n")
	headers.WriteString("MIME-Version: 1.0\r\n")
	headers.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary()))
	headers.WriteString("\r\n")

	full := headers.String() + body.String()
	return base64.URLEncoding.EncodeToString([]byte(full)), nil
}

// isInvalidFrom classifies Gmail API failures caused by an unauthorized
// sender alias: 400s mentioning the from address and 403 delegation denials.
func isInvalidFrom(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case 400:
		return strings.Contains(strings.ToLower(apiErr.Message), "from")
	case 403:
		return strings.Contains(apiErr.Message, "Delegation denied")
	}
	return false
}
