package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard values
	detectedAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)
	token := EncodeToken(detectedAt, "2f1c7c3e-9a55-4d1e-a0f5-3c8f4a3b9d10")
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.NotContains(t, token, "=", "Token should be unpadded")

	decodedAt, decodedID, err := DecodeToken(token)
	require.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, detectedAt, decodedAt, "Time should match after decode")
	assert.Equal(t, "2f1c7c3e-9a55-4d1e-a0f5-3c8f4a3b9d10", decodedID, "ID should match after decode")

	// Test case 2: Zero time
	decodedZero, _, err := DecodeToken(EncodeToken(time.Time{}, "x"))
	require.NoError(t, err, "Decoding zero time should not return an error")
	assert.True(t, decodedZero.IsZero(), "Zero time should match after decode")

	// Test case 3: Non-UTC input is normalised
	local := time.Date(2024, 1, 2, 3, 4, 5, 6, time.FixedZone("X", 5*3600))
	decodedLocal, _, err := DecodeToken(EncodeToken(local, "id"))
	require.NoError(t, err)
	assert.True(t, local.Equal(decodedLocal), "Instant should survive encoding")
}

func TestDecodeTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	noSeparator := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, _, err = DecodeToken(noSeparator)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test empty id
	emptyID := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|"))
	_, _, err = DecodeToken(emptyID)
	assert.Error(t, err, "Should return an error for a missing id")

	// Test invalid time format
	badTime := base64.RawURLEncoding.EncodeToString([]byte("notatime|abc"))
	_, _, err = DecodeToken(badTime)
	assert.Error(t, err, "Should return an error for invalid time format")
	assert.Contains(t, err.Error(), "time parse", "Error should mention time parsing issue")
}
