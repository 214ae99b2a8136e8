package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "integer", input: "100", want: "100"},
		{name: "two decimal places", input: "99.99", want: "99.99"},
		{name: "one decimal place", input: "0.5", want: "0.5"},
		{name: "smallest unit", input: "0.01", want: "0.01"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "ten", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "sub-cent precision", input: "1.001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100.00", Format(decimal.NewFromInt(100)))
	assert.Equal(t, "0.50", Format(decimal.RequireFromString("0.5")))
	assert.Equal(t, "-12.30", Format(decimal.RequireFromString("-12.3")))
}
