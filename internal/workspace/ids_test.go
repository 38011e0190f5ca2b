package workspace

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewCertificateID(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	id := NewCertificateID(now)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}-\d{6}-[a-z0-9]{8}$`), id)
	assert.Equal(t, "20240315-093045-", id[:16])

	other := NewCertificateID(now)
	assert.NotEqual(t, id, other, "same instant must still yield distinct ids")
}

func TestColumnLetter(t *testing.T) {
	assert.Equal(t, "A", columnLetter(1))
	assert.Equal(t, "K", columnLetter(11))
	assert.Equal(t, "Z", columnLetter(26))
	assert.Equal(t, "AA", columnLetter(27))
	assert.Equal(t, "AB", columnLetter(28))
}
