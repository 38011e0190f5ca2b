package workspace

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCertificateID builds a human-sortable certificate identifier:
// yyyyMMdd-HHmmss- followed by eight lowercase alphanumeric characters
// drawn from a fresh UUID. Successive calls always differ even within the
// same second.
func NewCertificateID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.Format("20060102-150405-") + suffix
}
