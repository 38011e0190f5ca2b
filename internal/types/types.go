// Package types defines the shared data structures for the certificate pipeline.
package types

import "time"

// Status values recorded in the tracking sheet.
const (
	StatusPending     = "Pending"
	StatusGenerated   = "Generated"
	StatusFailed      = "Failed"
	StatusRegenerated = "Re-generated"
	StatusFailedRegen = "Failed Re-gen"
)

// Submission is one certificate request, captured from a form event or re-read
// from a tracking row. It is immutable for the duration of a processing attempt.
type Submission struct {
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	CourseName     string    `json:"course_name"`
	CourseDuration string    `json:"course_duration,omitempty"`
	CompletionDate time.Time `json:"completion_date,omitempty"` // zero when unknown (batch re-generation)
}

// CertificateRecord is the output of a successful render. Every render produces
// a brand-new record; records are never mutated or reused.
type CertificateRecord struct {
	CertificateID string    `json:"certificate_id"`
	PDFURL        string    `json:"pdf_url"`
	IssuedDate    time.Time `json:"issued_date"` // the completion date, not the processing time
}

// TrackingRow mirrors one row of the control sheet.
type TrackingRow struct {
	Timestamp      time.Time
	Status         string
	ErrorMessage   string
	CertificateID  string
	IssuedDate     string // yyyy-MM-dd, empty when unknown
	FullName       string
	Email          string
	CourseName     string
	CourseDuration string
	CertificateURL string
	CredentialURL  string
}

// BatchResult aggregates one batch re-generation run.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}
