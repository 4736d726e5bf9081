package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerify(t *testing.T) {
	manager := NewJWTManager("test-secret", 1)

	tokenString, err := manager.GenerateToken(785, "J. Smith")
	require.NoError(t, err)

	claims, err := manager.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.EqualValues(t, 785, claims.SAPIN)
	assert.Equal(t, "J. Smith", claims.Name)
}

func TestJWTVerifyWrongSecret(t *testing.T) {
	tokenString, err := NewJWTManager("secret-a", 1).GenerateToken(785, "J. Smith")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", 1).VerifyToken(tokenString)
	assert.Error(t, err, "密钥不匹配的 token 必须被拒绝")
}

func TestJWTVerifyExpired(t *testing.T) {
	// 有效期为 -1 小时：签发即过期
	manager := NewJWTManager("test-secret", -1)
	tokenString, err := manager.GenerateToken(785, "J. Smith")
	require.NoError(t, err)

	_, err = manager.VerifyToken(tokenString)
	assert.Error(t, err)
}
