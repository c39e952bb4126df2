package validate

import (
	"testing"

	"github.com/recruit-notes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(domain.SignUpRequest{Name: "A", Email: "nope", Password: "123456"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Contains(t, err.Error(), "field 'name' failed 'min'")
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(domain.CreateNoteRequest{CandidateID: "c1", Content: "hi"}))
}
