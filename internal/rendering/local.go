package rendering

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/rafael/certificate-automator/internal/types"
	"github.com/rafael/certificate-automator/internal/workspace"
)

// defaultCertificateHTML is the built-in certificate layout used when no
// custom template file is supplied.
const defaultCertificateHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; text-align: center; margin: 4em; }
  h1 { font-size: 2.4em; margin-bottom: 0.2em; }
  .name { font-size: 2em; margin: 1em 0 0.4em; }
  .meta { color: #555; margin-top: 2em; font-size: 0.9em; }
</style>
</head>
<body>
  <h1>Certificado de Conclusão</h1>
  <p>Certificamos que</p>
  <p class="name">{{.FullName}}</p>
  <p>concluiu o curso <strong>{{.CourseName}}</strong>{{if .CourseDuration}} ({{.CourseDuration}}){{end}}</p>
  <p>em {{.Date}}</p>
  <p class="meta">ID do certificado: {{.CertificateID}}</p>
</body>
</html>`

// LocalRenderer fills an HTML certificate template and prints it to PDF with
// headless Chrome. It needs no Workspace credentials, which makes it the
// development and offline renderer. Requires Chrome/Chromium on the system.
type LocalRenderer struct {
	OutputDir    string
	TemplatePath string
	Timeout      time.Duration
	now          func() time.Time
}

// NewLocalRenderer writes PDFs into outputDir. An empty templatePath selects
// the built-in layout.
func NewLocalRenderer(outputDir, templatePath string) *LocalRenderer {
	return &LocalRenderer{
		OutputDir:    outputDir,
		TemplatePath: templatePath,
		Timeout:      60 * time.Second,
		now:          time.Now,
	}
}

type templateData struct {
	FullName       string
	CourseName     string
	CourseDuration string
	Date           string
	CertificateID  string
}

// Generate renders the template to a data URL, prints it in a headless
// browser and writes the PDF to disk. The returned PDFURL is a file path.
func (r *LocalRenderer) Generate(ctx context.Context, sub types.Submission) (*types.CertificateRecord, error) {
	certID := workspace.NewCertificateID(r.now())
	issued := sub.CompletionDate
	if issued.IsZero() {
		issued = r.now()
	}

	html, err := r.renderHTML(templateData{
		FullName:       sub.FullName,
		CourseName:     sub.CourseName,
		CourseDuration: sub.CourseDuration,
		Date:           issued.Format(DisplayDateLayout),
		CertificateID:  certID,
	})
	if err != nil {
		return nil, &RenderError{Stage: "html template", Err: err}
	}

	pdf, err := r.printToPDF(ctx, html)
	if err != nil {
		return nil, &RenderError{Stage: "pdf print", Err: err}
	}

	if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
		return nil, &RenderError{Stage: "output directory", Err: err}
	}
	outPath := filepath.Join(r.OutputDir, certID+".pdf")
	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return nil, &RenderError{Stage: "pdf write", Err: err}
	}

	log.Printf("rendering: certificate %s written to %s", certID, outPath)
	return &types.CertificateRecord{
		CertificateID: certID,
		PDFURL:        outPath,
		IssuedDate:    issued,
	}, nil
}

func (r *LocalRenderer) renderHTML(data templateData) (string, error) {
	var tmpl *template.Template
	var err error
	if r.TemplatePath != "" {
		tmpl, err = template.ParseFiles(r.TemplatePath)
	} else {
		tmpl, err = template.New("certificate").Parse(defaultCertificateHTML)
	}
	if err != nil {
		return "", fmt.Errorf("parsing certificate template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing certificate template: %w", err)
	}
	return sb.String(), nil
}

func (r *LocalRenderer) printToPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, r.Timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless print failed: %w", err)
	}
	return pdf, nil
}
