package mockapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerifyToken(t *testing.T) {
	s := NewServer("172", []byte("test-signing-key-0123456789abcdef"))
	acct, err := s.RegisterAccount("Ana", "ana@example.com", "hunter2")
	require.NoError(t, err)

	token, err := s.mintToken(acct)
	require.NoError(t, err)

	claims, err := s.verifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, codeString(acct), claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestVerifyTokenRejectsForeignKey(t *testing.T) {
	s := NewServer("172", []byte("test-signing-key-0123456789abcdef"))
	other := NewServer("172", []byte("another-signing-key-fedcba987654"))

	acct, err := other.RegisterAccount("Ana", "ana@example.com", "hunter2")
	require.NoError(t, err)
	token, err := other.mintToken(acct)
	require.NoError(t, err)

	_, err = s.verifyToken(token)
	assert.Error(t, err)
}

func TestRegisterAccountRejectsDuplicates(t *testing.T) {
	s := NewServer("172", []byte("k"))

	_, err := s.RegisterAccount("Ana", "ana@example.com", "hunter2")
	require.NoError(t, err)
	_, err = s.RegisterAccount("Ana Again", "ana@example.com", "other")
	assert.Error(t, err)
}
