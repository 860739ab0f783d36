package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"frsm-backend/models"
)

func TestAllowedAvatarExt(t *testing.T) {
	assert.True(t, AllowedAvatarExt("me.jpg"))
	assert.True(t, AllowedAvatarExt("me.JPEG"))
	assert.True(t, AllowedAvatarExt("photo.png"))
	assert.True(t, AllowedAvatarExt("anim.gif"))

	assert.False(t, AllowedAvatarExt("doc.pdf"))
	assert.False(t, AllowedAvatarExt("script.png.exe"))
	assert.False(t, AllowedAvatarExt("noextension"))
	assert.False(t, AllowedAvatarExt(""))
}

func TestMaxAvatarBytes(t *testing.T) {
	assert.Equal(t, int64(5*1024*1024), int64(MaxAvatarBytes))
}

func TestChangePasswordValidation(t *testing.T) {
	assert.Error(t, validate.Struct(models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "short",
		ConfirmPassword: "short",
	}), "new password must be at least 8 characters")
	assert.Error(t, validate.Struct(models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "long-enough-password",
		ConfirmPassword: "different-password",
	}), "confirmation must match")
	assert.NoError(t, validate.Struct(models.ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "long-enough-password",
		ConfirmPassword: "long-enough-password",
	}))
}
