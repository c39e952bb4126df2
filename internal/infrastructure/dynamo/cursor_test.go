package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/recruit-notes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"notification_id": strVal("01J0"),
		"user_id":         strVal("u1"),
		"created_at":      strVal("2024-01-01T00:00:00Z"),
	}
	c := encodeCursor(key)
	require.NotEmpty(t, c)

	got, err := decodeCursor(c)
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestCursor_Empty(t *testing.T) {
	assert.Empty(t, encodeCursor(nil))
	got, err := decodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCursor_Invalid(t *testing.T) {
	_, err := decodeCursor("!!not-base64")
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = decodeCursor("bm90LWpzb24")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}
