package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_IssueAndDecode(t *testing.T) {
	codec := NewCodec("test-secret-key", 30*time.Minute)

	token, err := codec.Issue("testuser")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "testuser", subject)
}

func TestCodec_DecodeExpired(t *testing.T) {
	// Negative TTL issues a token that is already past its expiry
	codec := NewCodec("test-secret-key", -1*time.Minute)

	token, err := codec.Issue("testuser")
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodec_DecodeInvalid(t *testing.T) {
	codec := NewCodec("test-secret-key", 30*time.Minute)

	valid, err := codec.Issue("testuser")
	require.NoError(t, err)

	otherCodec := NewCodec("a-different-secret", 30*time.Minute)
	foreign, err := otherCodec.Issue("testuser")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA"

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not-a-token"},
		{name: "Empty", token: ""},
		{name: "Wrong signing key", token: foreign},
		{name: "Tampered signature", token: tampered},
		{name: "Missing segments", token: parts[0] + "." + parts[1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestCodec_TTL(t *testing.T) {
	codec := NewCodec("test-secret-key", 30*time.Minute)
	assert.Equal(t, 30*time.Minute, codec.TTL())
}
