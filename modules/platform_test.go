package modules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want CallResult
	}{
		{nil, ResultOK},
		{errors.New("CHAT_ADMIN_REQUIRED"), ResultPermissionDenied},
		{errors.New("CHAT_WRITE_FORBIDDEN"), ResultPermissionDenied},
		{errors.New("RIGHT_FORBIDDEN"), ResultPermissionDenied},
		{errors.New("USER_ADMIN_INVALID"), ResultPermissionDenied},
		{errors.New("USER_NOT_PARTICIPANT"), ResultNotFound},
		{errors.New("MESSAGE_ID_INVALID"), ResultNotFound},
		{errors.New("FLOOD_WAIT_30"), ResultFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classify(tt.err), "err %v", tt.err)
	}
}
