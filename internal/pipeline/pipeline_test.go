package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafael/certificate-automator/internal/notification"
	"github.com/rafael/certificate-automator/internal/tracking"
	"github.com/rafael/certificate-automator/internal/types"
)

type fakeRenderer struct {
	calls int
	err   error
	panic bool
}

func (f *fakeRenderer) Generate(ctx context.Context, sub types.Submission) (*types.CertificateRecord, error) {
	f.calls++
	if f.panic {
		panic("renderer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	issued := sub.CompletionDate
	if issued.IsZero() {
		issued = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	}
	return &types.CertificateRecord{
		CertificateID: fmt.Sprintf("20240315-09304%d-ab12cd3%d", f.calls, f.calls),
		PDFURL:        fmt.Sprintf("https://drive.google.com/file/d/cert%d/view", f.calls),
		IssuedDate:    issued,
	}, nil
}

type fakeTracker struct {
	header    []string
	rows      map[int64]map[string]string
	nextRow   int64
	appendErr error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		header:  append([]string{}, tracking.Columns...),
		rows:    map[int64]map[string]string{},
		nextRow: 2,
	}
}

func (f *fakeTracker) Append(ctx context.Context, sub types.Submission) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	row := f.nextRow
	f.nextRow++
	f.rows[row] = map[string]string{
		"Status":          types.StatusPending,
		"Full Name":       sub.FullName,
		"Email Address":   sub.Email,
		"Course Name":     sub.CourseName,
		"Course Duration": sub.CourseDuration,
	}
	return row, nil
}

func (f *fakeTracker) MarkOutcome(ctx context.Context, row int64, status, errorMessage string, record *types.CertificateRecord, credentialURL string) error {
	if row == 0 {
		return nil
	}
	cells := f.rows[row]
	if cells == nil {
		cells = map[string]string{}
		f.rows[row] = cells
	}
	cells["Status"] = status
	cells["Error Message"] = errorMessage
	if record != nil {
		cells["Certificate ID"] = record.CertificateID
		cells["Issued Date"] = record.IssuedDate.Format(tracking.DateLayout)
		cells["Certificate URL"] = record.PDFURL
	}
	if credentialURL != "" {
		cells["LinkedIn URL"] = credentialURL
	}
	return nil
}

func (f *fakeTracker) ResolveColumns(ctx context.Context) (map[string]int, error) {
	cols := map[string]int{}
	for i, name := range f.header {
		cols[name] = i + 1
	}
	return cols, nil
}

func (f *fakeTracker) ReadRow(ctx context.Context, row int64) (types.TrackingRow, error) {
	cells := f.rows[row]
	return types.TrackingRow{
		Status:         cells["Status"],
		ErrorMessage:   cells["Error Message"],
		CertificateID:  cells["Certificate ID"],
		IssuedDate:     cells["Issued Date"],
		FullName:       cells["Full Name"],
		Email:          cells["Email Address"],
		CourseName:     cells["Course Name"],
		CourseDuration: cells["Course Duration"],
		CertificateURL: cells["Certificate URL"],
		CredentialURL:  cells["LinkedIn URL"],
	}, nil
}

func (f *fakeTracker) UpdateRow(ctx context.Context, row int64, updates map[string]string) error {
	cells := f.rows[row]
	if cells == nil {
		cells = map[string]string{}
		f.rows[row] = cells
	}
	for k, v := range updates {
		cells[k] = v
	}
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendCertificateEmail(ctx context.Context, sub types.Submission, record *types.CertificateRecord, credentialURL string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sub.Email)
	return nil
}

type fakeErrorLog struct {
	messages []string
	panics   []string
}

func (f *fakeErrorLog) Record(ctx context.Context, message string, detail error) {
	f.messages = append(f.messages, message)
}

func (f *fakeErrorLog) RecordPanic(ctx context.Context, message, stack string) {
	f.panics = append(f.panics, message)
}

func newTestPipeline() (*Pipeline, *fakeRenderer, *fakeTracker, *fakeMailer, *fakeErrorLog) {
	renderer := &fakeRenderer{}
	tracker := newFakeTracker()
	mailer := &fakeMailer{}
	errLog := &fakeErrorLog{}
	p := &Pipeline{
		Renderer:     renderer,
		Tracker:      tracker,
		Mailer:       mailer,
		ErrorLog:     errLog,
		Organization: notification.Organization{Name: "Escola Exemplo"},
		Pacing:       time.Millisecond,
	}
	return p, renderer, tracker, mailer, errLog
}

func testSubmission() types.Submission {
	return types.Submission{
		FullName:       "Maria Silva",
		Email:          "maria@example.com",
		CourseName:     "Go Avançado",
		CourseDuration: "40 horas",
		CompletionDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestProcessSubmission(t *testing.T) {
	t.Run("generated with email", func(t *testing.T) {
		p, _, tracker, mailer, _ := newTestPipeline()

		outcome := p.ProcessSubmission(context.Background(), testSubmission())

		assert.Equal(t, types.StatusGenerated, outcome.Status)
		assert.True(t, outcome.EmailSent)
		assert.NotEmpty(t, outcome.CertificateID)
		assert.Contains(t, outcome.CredentialURL, "linkedin.com/profile/add")
		assert.Equal(t, []string{"maria@example.com"}, mailer.sent)

		row := tracker.rows[outcome.RowIndex]
		assert.Equal(t, types.StatusGenerated, row["Status"])
		assert.Equal(t, outcome.CertificateID, row["Certificate ID"])
		assert.Equal(t, "2024-03-10", row["Issued Date"])
	})

	t.Run("render failure settles as failed without email", func(t *testing.T) {
		p, renderer, tracker, mailer, errLog := newTestPipeline()
		renderer.err = errors.New("drive quota exceeded")

		outcome := p.ProcessSubmission(context.Background(), testSubmission())

		assert.Equal(t, types.StatusFailed, outcome.Status)
		assert.Equal(t, GenerationFailedMessage, outcome.ErrorMessage)
		assert.False(t, outcome.EmailSent)
		assert.Empty(t, mailer.sent)
		assert.Equal(t, types.StatusFailed, tracker.rows[outcome.RowIndex]["Status"])
		assert.Equal(t, GenerationFailedMessage, tracker.rows[outcome.RowIndex]["Error Message"])
		assert.NotEmpty(t, errLog.messages)
	})

	t.Run("email failure never flips status", func(t *testing.T) {
		p, _, tracker, mailer, errLog := newTestPipeline()
		mailer.err = errors.New("smtp down")

		outcome := p.ProcessSubmission(context.Background(), testSubmission())

		assert.Equal(t, types.StatusGenerated, outcome.Status)
		assert.False(t, outcome.EmailSent)
		assert.Equal(t, types.StatusGenerated, tracker.rows[outcome.RowIndex]["Status"])
		assert.NotEmpty(t, errLog.messages)
	})

	t.Run("implausible email skips notification", func(t *testing.T) {
		p, _, _, mailer, _ := newTestPipeline()
		sub := testSubmission()
		sub.Email = "no-address"

		outcome := p.ProcessSubmission(context.Background(), sub)

		assert.Equal(t, types.StatusGenerated, outcome.Status)
		assert.False(t, outcome.EmailSent)
		assert.Empty(t, mailer.sent)
	})

	t.Run("tracking append failure is non fatal", func(t *testing.T) {
		p, _, tracker, mailer, _ := newTestPipeline()
		tracker.appendErr = errors.New("sheet unavailable")

		outcome := p.ProcessSubmission(context.Background(), testSubmission())

		assert.Equal(t, types.StatusGenerated, outcome.Status)
		assert.Zero(t, outcome.RowIndex)
		assert.Len(t, mailer.sent, 1)
	})

	t.Run("panic settles as failed", func(t *testing.T) {
		p, renderer, tracker, _, errLog := newTestPipeline()
		renderer.panic = true

		outcome := p.ProcessSubmission(context.Background(), testSubmission())

		assert.Equal(t, types.StatusFailed, outcome.Status)
		assert.Contains(t, outcome.ErrorMessage, "renderer exploded")
		assert.Equal(t, types.StatusFailed, tracker.rows[outcome.RowIndex]["Status"])
		assert.NotEmpty(t, errLog.panics)
	})

	t.Run("re-generation mints independent certificates", func(t *testing.T) {
		p, _, _, _, _ := newTestPipeline()

		first := p.ProcessSubmission(context.Background(), testSubmission())
		second := p.ProcessSubmission(context.Background(), testSubmission())

		assert.NotEqual(t, first.CertificateID, second.CertificateID)
		assert.NotEqual(t, first.CertificateURL, second.CertificateURL)
	})
}

func TestRunBatch(t *testing.T) {
	seedRow := func(tracker *fakeTracker, row int64, name, email, course string) {
		tracker.rows[row] = map[string]string{
			"Status":          types.StatusGenerated,
			"Full Name":       name,
			"Email Address":   email,
			"Course Name":     course,
			"Course Duration": "40 horas",
			"Issued Date":     "2024-01-10",
			"Certificate ID":  "20240110-120000-old00000",
		}
	}

	t.Run("mixed rows", func(t *testing.T) {
		p, _, tracker, mailer, _ := newTestPipeline()
		seedRow(tracker, 2, "Maria Silva", "maria@example.com", "Go Avançado")
		seedRow(tracker, 3, "João Souza", "", "Go Avançado")
		seedRow(tracker, 4, "Ana Lima", "ana@example.com", "Go Avançado")

		result := p.RunBatch(context.Background(), BatchOptions{Rows: []int64{2, 3, 4}, SendEmails: true})

		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Successful)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "Row 3")
		assert.Contains(t, result.Errors[0], "Email Address")

		assert.Equal(t, types.StatusRegenerated, tracker.rows[2]["Status"])
		assert.Equal(t, types.StatusFailedRegen, tracker.rows[3]["Status"])
		assert.Equal(t, types.StatusRegenerated, tracker.rows[4]["Status"])

		assert.Equal(t, "2024-01-10", tracker.rows[2]["Issued Date"], "issued date is preserved")
		assert.NotEqual(t, "20240110-120000-old00000", tracker.rows[2]["Certificate ID"], "a fresh certificate is minted")
		assert.Equal(t, "", tracker.rows[2]["Error Message"])

		assert.ElementsMatch(t, []string{"maria@example.com", "ana@example.com"}, mailer.sent)
	})

	t.Run("emails off by default", func(t *testing.T) {
		p, _, tracker, mailer, _ := newTestPipeline()
		seedRow(tracker, 2, "Maria Silva", "maria@example.com", "Go Avançado")

		result := p.RunBatch(context.Background(), BatchOptions{Rows: []int64{2}})
		assert.Equal(t, 1, result.Successful)
		assert.Empty(t, mailer.sent)
	})

	t.Run("missing header aborts before any row", func(t *testing.T) {
		p, renderer, tracker, _, _ := newTestPipeline()
		tracker.header = []string{"Timestamp", "Status"}
		seedRow(tracker, 2, "Maria Silva", "maria@example.com", "Go Avançado")

		result := p.RunBatch(context.Background(), BatchOptions{Rows: []int64{2}})

		assert.Equal(t, 0, result.Total)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "missing required columns")
		assert.Zero(t, renderer.calls)
		assert.Equal(t, types.StatusGenerated, tracker.rows[2]["Status"], "rows stay untouched")
	})

	t.Run("header row is never selectable", func(t *testing.T) {
		p, renderer, _, _, _ := newTestPipeline()

		result := p.RunBatch(context.Background(), BatchOptions{Rows: []int64{1}})
		assert.Equal(t, 0, result.Total)
		assert.Zero(t, renderer.calls)
	})

	t.Run("render failure marks failed re-gen", func(t *testing.T) {
		p, renderer, tracker, _, _ := newTestPipeline()
		renderer.err = errors.New("slides api down")
		seedRow(tracker, 2, "Maria Silva", "maria@example.com", "Go Avançado")

		result := p.RunBatch(context.Background(), BatchOptions{Rows: []int64{2}})

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, types.StatusFailedRegen, tracker.rows[2]["Status"])
		assert.Contains(t, tracker.rows[2]["Error Message"], GenerationFailedMessage)
	})
}
