package sl

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "simple error",
			err:  errors.New("something went wrong"),
			want: "something went wrong",
		},
		{
			name: "empty error message",
			err:  errors.New(""),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Err(tt.err)
			assert.Equal(t, "error", attr.Key)
			assert.Equal(t, slog.KindString, attr.Value.Kind())
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}

func TestOp(t *testing.T) {
	attr := Op("services.auth.Login")
	assert.Equal(t, "op", attr.Key)
	assert.Equal(t, "services.auth.Login", attr.Value.String())
}
