package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	_, err = svc.Issue("")
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, err := svc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	token, err := NewTokenService("other-secret", time.Minute).Issue("user-1")
	require.NoError(t, err)

	svc := NewTokenService("test-secret", time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenService("test-secret", time.Minute).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header   string
		expected string
		err      error
	}{
		{header: "Bearer abc", expected: "abc"},
		{header: "bearer abc", expected: "abc"},
		{header: "", err: ErrMissingToken},
		{header: "Token abc", err: ErrInvalidToken},
		{header: "Bearer", err: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := TokenFromRequest(req)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
