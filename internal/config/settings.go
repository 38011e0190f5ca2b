// Package config manages the persisted settings that drive certificate
// issuance: which spreadsheet tracks submissions, which slide deck is the
// template, where PDFs land, and who signs the notification emails.
package config

// Persisted property keys. These names are part of the stored configuration
// format and must not change.
const (
	KeyTemplateSlideURL = "TEMPLATE_SLIDE_URL"
	KeyControlSheetID   = "CONTROL_SHEET_ID"
	KeySheetName        = "SHEET_NAME"
	KeyOutputFolderURL  = "OUTPUT_FOLDER_URL"
	KeyFormURL          = "FORM_URL"
	KeyOrganizationName = "ORGANIZATION_NAME"
	KeyOrganizationID   = "ORGANIZATION_ID"
	KeyInstructorEmail  = "INSTRUCTOR_EMAIL"
	KeyErrorLogSheetURL = "ERROR_LOG_SHEET_URL"
)

// schemaKeys lists every key the store recognizes. Unknown persisted keys are
// ignored on load and dropped on save.
var schemaKeys = []string{
	KeyTemplateSlideURL,
	KeyControlSheetID,
	KeySheetName,
	KeyOutputFolderURL,
	KeyFormURL,
	KeyOrganizationName,
	KeyOrganizationID,
	KeyInstructorEmail,
	KeyErrorLogSheetURL,
}

// requiredKeys must be non-empty for a configuration to be saveable.
var requiredKeys = []string{
	KeyControlSheetID,
	KeyTemplateSlideURL,
	KeyOutputFolderURL,
	KeyFormURL,
	KeyOrganizationName,
	KeyInstructorEmail,
}

// Settings is an immutable snapshot of the configuration, taken once per
// invocation and passed down by value. Mutating a copy never affects the
// store or other invocations in flight.
type Settings struct {
	TemplateSlideURL string
	ControlSheetID   string
	SheetName        string
	OutputFolderURL  string
	FormURL          string
	OrganizationName string
	OrganizationID   string
	InstructorEmail  string
	ErrorLogSheetURL string
}

// Map renders the snapshot back into key/value form, for display surfaces.
func (s Settings) Map() map[string]string {
	return map[string]string{
		KeyTemplateSlideURL: s.TemplateSlideURL,
		KeyControlSheetID:   s.ControlSheetID,
		KeySheetName:        s.SheetName,
		KeyOutputFolderURL:  s.OutputFolderURL,
		KeyFormURL:          s.FormURL,
		KeyOrganizationName: s.OrganizationName,
		KeyOrganizationID:   s.OrganizationID,
		KeyInstructorEmail:  s.InstructorEmail,
		KeyErrorLogSheetURL: s.ErrorLogSheetURL,
	}
}

func settingsFromMap(m map[string]string) Settings {
	return Settings{
		TemplateSlideURL: m[KeyTemplateSlideURL],
		ControlSheetID:   m[KeyControlSheetID],
		SheetName:        m[KeySheetName],
		OutputFolderURL:  m[KeyOutputFolderURL],
		FormURL:          m[KeyFormURL],
		OrganizationName: m[KeyOrganizationName],
		OrganizationID:   m[KeyOrganizationID],
		InstructorEmail:  m[KeyInstructorEmail],
		ErrorLogSheetURL: m[KeyErrorLogSheetURL],
	}
}
