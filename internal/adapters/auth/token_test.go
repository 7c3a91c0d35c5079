package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventledger/internal/domain"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	j := NewJWT(secret)

	token, err := j.Issue(domain.Identity{UserID: "user-123", UserName: "Ada"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
}

func TestJWT_Verify(t *testing.T) {
	j := NewJWT("test-secret")
	valid, err := j.Issue(domain.Identity{UserID: "user-123", UserName: "Ada"}, time.Hour)
	require.NoError(t, err)
	expired, err := j.Issue(domain.Identity{UserID: "user-123"}, -time.Minute)
	require.NoError(t, err)
	otherKey, err := NewJWT("other-secret").Issue(domain.Identity{UserID: "user-123"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := j.Issue(domain.Identity{UserName: "Ghost"}, time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    domain.Identity
		wantErr bool
	}{
		{name: "valid", token: valid, want: domain.Identity{UserID: "user-123", UserName: "Ada"}},
		{name: "expired", token: expired, wantErr: true},
		{name: "wrong key", token: otherKey, wantErr: true},
		{name: "missing subject", token: noSubject, wantErr: true},
		{name: "unsigned", token: none, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.Verify(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
