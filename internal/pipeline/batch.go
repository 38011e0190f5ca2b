package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rafael/certificate-automator/internal/notification"
	"github.com/rafael/certificate-automator/internal/tracking"
	"github.com/rafael/certificate-automator/internal/types"
	"github.com/rafael/certificate-automator/internal/workspace"
)

// requiredBatchHeaders must all be present in the sheet before any row is
// touched.
var requiredBatchHeaders = []string{
	"Full Name",
	"Email Address",
	"Course Name",
	"Course Duration",
}

// BatchOptions selects the rows for a re-generation run.
type BatchOptions struct {
	Rows       []int64
	SendEmails bool
}

// RunBatch re-generates certificates for already-logged rows. Each selected
// row gets a fresh certificate and credential URL; the Issued Date column is
// preserved so the re-issued certificate keeps its original date.
func (p *Pipeline) RunBatch(ctx context.Context, opts BatchOptions) types.BatchResult {
	cols, err := p.Tracker.ResolveColumns(ctx)
	if err != nil {
		msg := fmt.Sprintf("cannot read sheet header: %v", err)
		p.ErrorLog.Record(ctx, "batch aborted", err)
		return types.BatchResult{Failed: 1, Errors: []string{msg}}
	}
	var missing []string
	for _, h := range requiredBatchHeaders {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		msg := fmt.Sprintf("sheet is missing required columns: %s", strings.Join(missing, ", "))
		p.ErrorLog.Record(ctx, "batch aborted", fmt.Errorf("%s", msg))
		return types.BatchResult{Failed: 1, Errors: []string{msg}}
	}

	result := types.BatchResult{}
	for i, row := range opts.Rows {
		if row <= 1 {
			log.Printf("pipeline: skipping row %d, header row is not selectable", row)
			continue
		}
		result.Total++

		outcome := p.regenerateRow(ctx, row, opts.SendEmails)
		if outcome == "" {
			result.Successful++
			if i < len(opts.Rows)-1 {
				time.Sleep(p.pacing())
			}
		} else {
			result.Failed++
			result.Errors = append(result.Errors, outcome)
		}
	}
	return result
}

// regenerateRow re-issues one certificate. It returns "" on success or the
// aggregate error line on failure.
func (p *Pipeline) regenerateRow(ctx context.Context, row int64, sendEmail bool) string {
	tr, err := p.Tracker.ReadRow(ctx, row)
	if err != nil {
		return p.failRow(ctx, row, "", fmt.Sprintf("Row %d: cannot read row: %v", row, err))
	}

	name := strings.TrimSpace(tr.FullName)
	email := strings.TrimSpace(tr.Email)
	course := strings.TrimSpace(tr.CourseName)
	if name == "" || email == "" || course == "" {
		var missing []string
		if name == "" {
			missing = append(missing, "Full Name")
		}
		if email == "" {
			missing = append(missing, "Email Address")
		}
		if course == "" {
			missing = append(missing, "Course Name")
		}
		msg := fmt.Sprintf("Row %d (%s): missing required data (%s) in selected row", row, name, strings.Join(missing, ", "))
		return p.failRow(ctx, row, name, msg)
	}

	sub := types.Submission{
		FullName:       name,
		Email:          email,
		CourseName:     course,
		CourseDuration: strings.TrimSpace(tr.CourseDuration),
	}
	if issued := strings.TrimSpace(tr.IssuedDate); issued != "" {
		if t, err := time.Parse(tracking.DateLayout, issued); err == nil {
			sub.CompletionDate = t
		}
	}

	record, err := p.Renderer.Generate(ctx, sub)
	if err != nil {
		p.ErrorLog.Record(ctx, fmt.Sprintf("re-generation failed for row %d (%s)", row, name), err)
		return p.failRow(ctx, row, name, fmt.Sprintf("Row %d (%s): %s", row, name, GenerationFailedMessage))
	}

	credentialURL := notification.CredentialURL(p.Organization, record, course)

	// Issued Date is deliberately left untouched: the certificate keeps its
	// original issue date across re-generations.
	updates := map[string]string{
		"Timestamp":       p.now().Format(workspace.TimestampLayout),
		"Status":          types.StatusRegenerated,
		"Error Message":   "",
		"Certificate ID":  record.CertificateID,
		"Certificate URL": record.PDFURL,
		"LinkedIn URL":    credentialURL,
	}
	if err := p.Tracker.UpdateRow(ctx, row, updates); err != nil {
		p.ErrorLog.Record(ctx, fmt.Sprintf("could not update row %d after re-generation", row), err)
		return fmt.Sprintf("Row %d (%s): generated but row update failed: %v", row, name, err)
	}

	if sendEmail && strings.Contains(email, "@") {
		if err := p.Mailer.SendCertificateEmail(ctx, sub, record, credentialURL); err != nil {
			log.Printf("pipeline: re-generation email to %s failed: %v", email, err)
			p.ErrorLog.Record(ctx, fmt.Sprintf("re-generation email failed for %s", email), err)
		}
	}
	return ""
}

// failRow stamps the row as Failed Re-gen and returns the aggregate error
// line.
func (p *Pipeline) failRow(ctx context.Context, row int64, name, msg string) string {
	updates := map[string]string{
		"Timestamp":     p.now().Format(workspace.TimestampLayout),
		"Status":        types.StatusFailedRegen,
		"Error Message": msg,
	}
	if err := p.Tracker.UpdateRow(ctx, row, updates); err != nil {
		log.Printf("pipeline: could not mark row %d as failed: %v", row, err)
	}
	return msg
}
