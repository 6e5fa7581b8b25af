package validator

import (
	"strings"
	"testing"

	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "  Shopper@Example.COM ", want: "shopper@example.com"},
		{in: "a@b.co", want: "a@b.co"},
		{in: "", wantErr: true},
		{in: "not-an-email", wantErr: true},
		{in: "Bob <bob@example.com>", wantErr: true},
		{in: strings.Repeat("a", 250) + "@example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Email(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.InvalidInput(""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("hunter"))
	assert.NoError(t, Password(strings.Repeat("パ", MaxPasswordLength)))
	assert.Error(t, Password("short"))
	assert.Error(t, Password(strings.Repeat("x", MaxPasswordLength+1)))
}
