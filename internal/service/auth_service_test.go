package service

import (
	"testing"

	"github.com/HadiHz88/medical-records-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuthRegisterAndLogin 测试注册登录与令牌往返
func TestAuthRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "test-secret", 3600)

	user, err := svc.Register("张医生", "zhang@example.com", "secret-password")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret-password", user.Password, "password must be stored hashed")

	t.Run("重复邮箱注册被拒绝", func(t *testing.T) {
		_, err := svc.Register("李医生", "zhang@example.com", "another-password")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("密码过短被拒绝", func(t *testing.T) {
		_, err := svc.Register("王医生", "wang@example.com", "short")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("正确凭证登录并验证令牌", func(t *testing.T) {
		token, logged, err := svc.Login("zhang@example.com", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, logged.ID)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "zhang@example.com", claims.Email)
		assert.False(t, claims.IsAdmin)
	})

	t.Run("错误密码登录失败", func(t *testing.T) {
		_, _, err := svc.Login("zhang@example.com", "wrong-password")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("伪造令牌验证失败", func(t *testing.T) {
		other := NewAuthService(repository.NewUserRepository(db), "other-secret", 3600)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.Error(t, err)
	})
}
