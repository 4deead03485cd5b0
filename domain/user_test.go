package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glatasks/backend/domain"
)

func TestValidateHandle(t *testing.T) {
	valid := []string{"abcd", "User1234", "a1B2c3D4", "abcdefghijklmnopqrstuvwxyz012345"}
	for _, handle := range valid {
		assert.NoError(t, domain.ValidateHandle(handle), handle)
	}

	invalid := []string{"", "abc", "has space", "with-dash", "ünïcode", "abcdefghijklmnopqrstuvwxyz0123456"}
	for _, handle := range invalid {
		err := domain.ValidateHandle(handle)
		assert.Error(t, err, handle)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), handle)
	}
}

func TestSetPassword_AndCheck(t *testing.T) {
	var user domain.User
	require.NoError(t, user.SetPassword("hunter22"))

	assert.NotEqual(t, "hunter22", user.PassHash)
	assert.True(t, user.PasswordOK("hunter22"))
	assert.False(t, user.PasswordOK("hunter23"))
}

func TestSetPassword_Empty(t *testing.T) {
	var user domain.User
	err := user.SetPassword("")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestPasswordOK_NilReceiver(t *testing.T) {
	var user *domain.User
	assert.False(t, user.PasswordOK("anything"))
}
