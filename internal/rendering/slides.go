package rendering

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/slides/v1"

	"github.com/rafael/certificate-automator/internal/types"
	"github.com/rafael/certificate-automator/internal/workspace"
)

// SlidesRenderer produces certificates from a Google Slides template: copy
// the template, replace the placeholder tokens, export as PDF into the output
// folder, then trash the working copy.
type SlidesRenderer struct {
	drive      *drive.Service
	slides     *slides.Service
	templateID string
	folderID   string
	now        func() time.Time
}

// NewSlidesRenderer builds a renderer from the template slide and output
// folder URLs.
func NewSlidesRenderer(driveSvc *drive.Service, slidesSvc *slides.Service, templateURL, folderURL string) (*SlidesRenderer, error) {
	templateID, err := workspace.ExtractResourceID(templateURL, "")
	if err != nil {
		return nil, fmt.Errorf("template slide url: %w", err)
	}
	folderID, err := workspace.ExtractResourceID(folderURL, "")
	if err != nil {
		return nil, fmt.Errorf("output folder url: %w", err)
	}
	return &SlidesRenderer{
		drive:      driveSvc,
		slides:     slidesSvc,
		templateID: templateID,
		folderID:   folderID,
		now:        time.Now,
	}, nil
}

// Generate renders one certificate. The working slide copy is deleted on both
// the success and failure paths; only the exported PDF survives.
func (r *SlidesRenderer) Generate(ctx context.Context, sub types.Submission) (*types.CertificateRecord, error) {
	certID := workspace.NewCertificateID(r.now())
	issued := sub.CompletionDate
	if issued.IsZero() {
		issued = r.now()
	}

	copyName := fmt.Sprintf("Certificado - %s - %s", sub.FullName, certID)
	working, err := r.drive.Files.Copy(r.templateID, &drive.File{Name: copyName}).
		Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "template copy", Err: err}
	}
	defer func() {
		if err := r.drive.Files.Delete(working.Id).Context(ctx).Do(); err != nil {
			log.Printf("rendering: could not delete working copy %s: %v", working.Id, err)
		}
	}()

	replacements := map[string]string{
		PlaceholderName:          sub.FullName,
		PlaceholderCourse:        sub.CourseName,
		PlaceholderDate:          issued.Format(DisplayDateLayout),
		PlaceholderCertificateID: certID,
		PlaceholderDuration:      sub.CourseDuration,
	}
	var requests []*slides.Request
	for token, value := range replacements {
		requests = append(requests, &slides.Request{
			ReplaceAllText: &slides.ReplaceAllTextRequest{
				ContainsText: &slides.SubstringMatchCriteria{Text: token, MatchCase: true},
				ReplaceText:  value,
			},
		})
	}
	_, err = r.slides.Presentations.
		BatchUpdate(working.Id, &slides.BatchUpdatePresentationRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "placeholder replacement", Err: err}
	}

	export, err := r.drive.Files.Export(working.Id, "application/pdf").
		Context(ctx).Download()
	if err != nil {
		return nil, &RenderError{Stage: "pdf export", Err: err}
	}
	defer export.Body.Close()

	pdf, err := r.drive.Files.Create(&drive.File{
		Name:     copyName + ".pdf",
		Parents:  []string{r.folderID},
		MimeType: "application/pdf",
	}).Media(export.Body).Fields("id", "webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "pdf upload", Err: err}
	}

	// Recipients open the PDF without a Workspace account.
	_, err = r.drive.Permissions.Create(pdf.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return nil, &RenderError{Stage: "pdf sharing", Err: err}
	}

	log.Printf("rendering: certificate %s generated for %s", certID, sub.Email)
	return &types.CertificateRecord{
		CertificateID: certID,
		PDFURL:        pdf.WebViewLink,
		IssuedDate:    issued,
	}, nil
}
