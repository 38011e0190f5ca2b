// Package rendering produces certificate PDFs. The Slides renderer copies a
// Google Slides template and exports it through Drive; the local renderer
// fills an HTML template and prints it with headless Chrome for development
// without Workspace credentials.
package rendering

import (
	"context"

	"github.com/rafael/certificate-automator/internal/types"
)

// Placeholder tokens replaced inside certificate templates.
const (
	PlaceholderName          = "{{NAME}}"
	PlaceholderCourse        = "{{COURSE}}"
	PlaceholderDate          = "{{DATE}}"
	PlaceholderCertificateID = "{{CERTIFICATE_ID}}"
	PlaceholderDuration      = "{{DURATION}}"
)

// DisplayDateLayout renders the completion date the way it appears on the
// certificate itself, dd/MM/yyyy.
const DisplayDateLayout = "02/01/2006"

// Renderer turns a submission into a finished certificate. Every call mints a
// brand-new artifact and identifier; records are never reused.
type Renderer interface {
	Generate(ctx context.Context, sub types.Submission) (*types.CertificateRecord, error)
}
