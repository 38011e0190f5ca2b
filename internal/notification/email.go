package notification

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafael/certificate-automator/internal/types"
)

// Message is one outbound email. From is optional; when set the transport
// sends on behalf of that alias.
type Message struct {
	To         string
	Subject    string
	TextBody   string
	HTMLBody   string
	SenderName string
	ReplyTo    string
	From       string
}

// Transport delivers a composed message.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// InvalidFromError reports that the transport rejected the From alias. The
// sender retries once without it.
type InvalidFromError struct {
	From string
	Err  error
}

func (e *InvalidFromError) Error() string {
	return fmt.Sprintf("sender alias %q rejected: %v", e.From, e.Err)
}

func (e *InvalidFromError) Unwrap() error {
	return e.Err
}

// issueDateLayout renders the issue date the way it appears on the
// certificate, dd/MM/yyyy.
const issueDateLayout = "02/01/2006"

var emailBodyTemplate = template.Must(template.New("email").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Olá, {{.FullName}}!</p>
  <p>Seu certificado do curso <strong>{{.CourseName}}</strong>{{if .CourseDuration}} ({{.CourseDuration}}){{end}} está pronto.</p>
  <p><a href="{{.PDFURL}}">Baixar certificado (PDF)</a></p>
  {{if .CredentialURL}}<p><a href="{{.CredentialURL}}">Adicionar ao seu perfil do LinkedIn</a></p>{{end}}
  <p>ID do certificado: {{.CertificateID}}<br>Data de emissão: {{.IssuedDate}}</p>
  <p>Atenciosamente,<br>{{.SenderName}}</p>
</body>
</html>`))

// Sender composes and dispatches certificate emails. Delivery problems are
// returned to the caller, which logs and swallows them; an email failure
// never undoes a generated certificate.
type Sender struct {
	transport       Transport
	validate        *validator.Validate
	organization    Organization
	instructorEmail string
	accountEmail    string
}

// NewSender wires a transport with the issuing organization's identity.
// accountEmail is the address the transport authenticates as; when the
// instructor email differs, it is used as the From alias.
func NewSender(transport Transport, org Organization, instructorEmail, accountEmail string) *Sender {
	return &Sender{
		transport:       transport,
		validate:        validator.New(),
		organization:    org,
		instructorEmail: instructorEmail,
		accountEmail:    accountEmail,
	}
}

// SendCertificateEmail delivers a finished certificate to its recipient. When
// the From alias is rejected by the transport, the send is retried once
// without it.
func (s *Sender) SendCertificateEmail(ctx context.Context, sub types.Submission, record *types.CertificateRecord, credentialURL string) error {
	if err := s.validate.Var(sub.Email, "required,email"); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", sub.Email, err)
	}

	senderName := strings.TrimSpace(s.organization.Name)
	if senderName == "" {
		senderName = "Certificate Issuer"
	}

	issuedOn := record.IssuedDate.Format(issueDateLayout)

	var html strings.Builder
	err := emailBodyTemplate.Execute(&html, map[string]string{
		"FullName":       sub.FullName,
		"CourseName":     sub.CourseName,
		"CourseDuration": sub.CourseDuration,
		"PDFURL":         record.PDFURL,
		"CredentialURL":  credentialURL,
		"CertificateID":  record.CertificateID,
		"IssuedDate":     issuedOn,
		"SenderName":     senderName,
	})
	if err != nil {
		return fmt.Errorf("composing email body: %w", err)
	}

	course := sub.CourseName
	if sub.CourseDuration != "" {
		course += " (" + sub.CourseDuration + ")"
	}
	text := fmt.Sprintf(
		"Olá, %s!\n\nSeu certificado do curso %s está pronto.\n\nCertificado: %s\n",
		sub.FullName, course, record.PDFURL,
	)
	if credentialURL != "" {
		text += fmt.Sprintf("Adicionar ao LinkedIn: %s\n", credentialURL)
	}
	text += fmt.Sprintf("\nID do certificado: %s\nData de emissão: %s\n\nAtenciosamente,\n%s\n", record.CertificateID, issuedOn, senderName)

	msg := Message{
		To:         sub.Email,
		Subject:    "Seu Certificado de " + sub.CourseName,
		TextBody:   text,
		HTMLBody:   html.String(),
		SenderName: senderName,
		ReplyTo:    s.instructorEmail,
	}
	if s.instructorEmail != "" && !strings.EqualFold(s.instructorEmail, s.accountEmail) {
		msg.From = s.instructorEmail
	}

	err = s.transport.Send(ctx, msg)
	var invalidFrom *InvalidFromError
	if errors.As(err, &invalidFrom) && msg.From != "" {
		log.Printf("notification: from alias %q rejected, retrying as executing account", msg.From)
		msg.From = ""
		err = s.transport.Send(ctx, msg)
	}
	if err != nil {
		return fmt.Errorf("sending certificate email to %s: %w", sub.Email, err)
	}

	log.Printf("notification: certificate email sent to %s", sub.Email)
	return nil
}
