// Package pipeline orchestrates certificate issuance end to end: track the
// submission, render the PDF, build the credential link, notify the
// recipient. Execution is strictly sequential; one submission is fully
// settled before the next starts.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rafael/certificate-automator/internal/notification"
	"github.com/rafael/certificate-automator/internal/types"
)

// GenerationFailedMessage is the error text recorded on a tracking row when
// rendering fails. Detail lives in the execution and error logs, not the row.
const GenerationFailedMessage = "Certificate generation step failed. Check execution logs."

// DefaultPacing is the pause between consecutive batch rows, keeping
// Workspace API usage under quota.
const DefaultPacing = 500 * time.Millisecond

// Renderer produces the certificate artifact.
type Renderer interface {
	Generate(ctx context.Context, sub types.Submission) (*types.CertificateRecord, error)
}

// Tracker records submissions and outcomes on the control sheet.
type Tracker interface {
	Append(ctx context.Context, sub types.Submission) (int64, error)
	MarkOutcome(ctx context.Context, row int64, status, errorMessage string, record *types.CertificateRecord, credentialURL string) error
	ResolveColumns(ctx context.Context) (map[string]int, error)
	ReadRow(ctx context.Context, row int64) (types.TrackingRow, error)
	UpdateRow(ctx context.Context, row int64, updates map[string]string) error
}

// Mailer delivers the certificate email.
type Mailer interface {
	SendCertificateEmail(ctx context.Context, sub types.Submission, record *types.CertificateRecord, credentialURL string) error
}

// ErrorRecorder mirrors failures to the error log.
type ErrorRecorder interface {
	Record(ctx context.Context, message string, detail error)
	RecordPanic(ctx context.Context, message, stack string)
}

// Outcome is the settled result of one submission.
type Outcome struct {
	Status         string `json:"status"`
	RowIndex       int64  `json:"row_index,omitempty"`
	CertificateID  string `json:"certificate_id,omitempty"`
	CertificateURL string `json:"certificate_url,omitempty"`
	CredentialURL  string `json:"credential_url,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	EmailSent      bool   `json:"email_sent"`
}

// Pipeline wires the collaborators for one invocation. Construct it from a
// fresh settings snapshot; it holds no mutable state of its own.
type Pipeline struct {
	Renderer     Renderer
	Tracker      Tracker
	Mailer       Mailer
	ErrorLog     ErrorRecorder
	Organization notification.Organization
	Pacing       time.Duration
	Now          func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) pacing() time.Duration {
	if p.Pacing > 0 {
		return p.Pacing
	}
	return DefaultPacing
}

// ProcessSubmission runs one submission through the full pipeline. Rendering
// failure settles the row as Failed and stops; a notification failure is
// logged but never undoes a generated certificate.
func (p *Pipeline) ProcessSubmission(ctx context.Context, sub types.Submission) (outcome Outcome) {
	row := p.appendPending(ctx, sub)
	outcome.RowIndex = row

	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			msg := fmt.Sprintf("unexpected failure processing submission for %s: %v", sub.Email, r)
			p.ErrorLog.RecordPanic(ctx, msg, stack)

			outcome = Outcome{
				Status:       types.StatusFailed,
				RowIndex:     row,
				ErrorMessage: msg,
			}
			if err := p.Tracker.MarkOutcome(ctx, row, types.StatusFailed, msg, nil, ""); err != nil {
				log.Printf("pipeline: could not mark panic outcome on row %d: %v", row, err)
			}
		}
	}()

	record, err := p.Renderer.Generate(ctx, sub)
	if err != nil {
		p.ErrorLog.Record(ctx, fmt.Sprintf("certificate generation failed for %s", sub.Email), err)
		if markErr := p.Tracker.MarkOutcome(ctx, row, types.StatusFailed, GenerationFailedMessage, nil, ""); markErr != nil {
			log.Printf("pipeline: could not mark failure on row %d: %v", row, markErr)
		}
		return Outcome{
			Status:       types.StatusFailed,
			RowIndex:     row,
			ErrorMessage: GenerationFailedMessage,
		}
	}

	credentialURL := notification.CredentialURL(p.Organization, record, sub.CourseName)

	if err := p.Tracker.MarkOutcome(ctx, row, types.StatusGenerated, "", record, credentialURL); err != nil {
		log.Printf("pipeline: could not mark success on row %d: %v", row, err)
	}

	outcome = Outcome{
		Status:         types.StatusGenerated,
		RowIndex:       row,
		CertificateID:  record.CertificateID,
		CertificateURL: record.PDFURL,
		CredentialURL:  credentialURL,
	}

	if strings.Contains(sub.Email, "@") {
		if err := p.Mailer.SendCertificateEmail(ctx, sub, record, credentialURL); err != nil {
			log.Printf("pipeline: email to %s failed: %v", sub.Email, err)
			p.ErrorLog.Record(ctx, fmt.Sprintf("certificate email failed for %s", sub.Email), err)
		} else {
			outcome.EmailSent = true
		}
	} else {
		log.Printf("pipeline: no plausible email address for %q, skipping notification", sub.FullName)
	}

	return outcome
}

// appendPending writes the Pending row. A tracking failure is non-fatal;
// generation proceeds with no row to update.
func (p *Pipeline) appendPending(ctx context.Context, sub types.Submission) int64 {
	row, err := p.Tracker.Append(ctx, sub)
	if err != nil {
		log.Printf("pipeline: could not append tracking row for %s: %v", sub.Email, err)
		return 0
	}
	return row
}
