// Package notification builds the recipient-facing artifacts of a finished
// certificate: the LinkedIn add-to-profile link and the delivery email.
package notification

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rafael/certificate-automator/internal/types"
)

const credentialBaseURL = "https://www.linkedin.com/profile/add?startTask=CERTIFICATION_NAME"

var numericOrganizationID = regexp.MustCompile(`^[0-9]+$`)

// Organization identifies the issuing body on the credential link. A numeric
// LinkedIn organization ID takes precedence over the display name.
type Organization struct {
	ID   string
	Name string
}

// CredentialURL builds the LinkedIn "add certification" URL for a generated
// certificate. Parameter order is fixed: name, issueYear, issueMonth,
// certUrl, certId, then exactly one organization parameter. The organization
// id wins only when it is numeric (LinkedIn rejects anything else); otherwise
// the name is used. Empty values are omitted; the certificate name defaults
// to "Certificate" and the issue date to now.
func CredentialURL(org Organization, record *types.CertificateRecord, courseName string) string {
	issued := record.IssuedDate
	if issued.IsZero() {
		issued = time.Now()
	}

	name := strings.TrimSpace(courseName)
	if name == "" {
		name = "Certificate"
	}

	var sb strings.Builder
	sb.WriteString(credentialBaseURL)
	addParam := func(key, value string) {
		if value == "" {
			return
		}
		sb.WriteString("&")
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(value))
	}

	addParam("name", name)
	addParam("issueYear", fmt.Sprintf("%d", issued.Year()))
	addParam("issueMonth", fmt.Sprintf("%d", int(issued.Month())))
	addParam("certUrl", record.PDFURL)
	addParam("certId", record.CertificateID)

	switch {
	case numericOrganizationID.MatchString(strings.TrimSpace(org.ID)):
		addParam("organizationId", strings.TrimSpace(org.ID))
	case strings.TrimSpace(org.Name) != "":
		addParam("organizationName", strings.TrimSpace(org.Name))
	default:
		addParam("organizationName", "Your Organization")
	}

	return sb.String()
}
