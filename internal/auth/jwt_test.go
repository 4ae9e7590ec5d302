package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJWTManager_RoundTrip 测试 token 生成与验证
func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "forum-search", time.Minute)

	token, err := m.GenerateAccessToken(42, "alice")
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "forum-search", claims.Issuer)
}

// TestJWTManager_Rejects 测试各类无效 token
func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", "forum-search", time.Minute)

	expired := NewJWTManager("secret", "forum-search", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.GenerateAccessToken(1, "")
	require.NoError(t, err)

	otherSecret, err := NewJWTManager("other", "forum-search", time.Minute).GenerateAccessToken(1, "")
	require.NoError(t, err)

	otherIssuer, err := NewJWTManager("secret", "someone-else", time.Minute).GenerateAccessToken(1, "")
	require.NoError(t, err)

	guest, err := m.GenerateAccessToken(0, "")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: otherSecret},
		{name: "wrong issuer", token: otherIssuer},
		{name: "guest uid", token: guest},
		{name: "none algorithm", token: none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.VerifyAccessToken(tt.token)
			assert.Error(t, err)
		})
	}
}

// TestExtractTokenFromHeader 测试 Authorization header 解析
func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "Bearer   abc ", want: "abc"},
		{header: "Bearer ", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractTokenFromHeader(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAuthHeader)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
