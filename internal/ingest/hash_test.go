package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeHash_NormalizesCaseAndWhitespace(t *testing.T) {
	base := DedupeHash("Acme Corp", "Software Intern", "Toronto")

	variants := [][3]string{
		{"acme corp", "software intern", "toronto"},
		{"  ACME CORP ", "Software Intern\t", " toronto"},
		{"Acme Corp\n", "  software INTERN", "TORONTO  "},
	}
	for _, v := range variants {
		assert.Equal(t, base, DedupeHash(v[0], v[1], v[2]), "variant %q", v)
	}
}

func TestDedupeHash_DiffersOnAnyField(t *testing.T) {
	base := DedupeHash("Acme Corp", "Software Intern", "Toronto")

	assert.NotEqual(t, base, DedupeHash("Acme Inc", "Software Intern", "Toronto"))
	assert.NotEqual(t, base, DedupeHash("Acme Corp", "Data Intern", "Toronto"))
	assert.NotEqual(t, base, DedupeHash("Acme Corp", "Software Intern", "Ottawa"))
	assert.NotEqual(t, base, DedupeHash("Acme Corp", "Software Intern", ""))
}

func TestDedupeHash_Format(t *testing.T) {
	got := DedupeHash("Acme", "Intern", "")

	sum := sha256.Sum256([]byte("acme|intern|"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, 64)
}
