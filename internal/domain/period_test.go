package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodRef(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		in      string
		want    PeriodRef
		wantErr bool
	}{
		{"latest", "latest", LatestPeriodRef(), false},
		{"latest any case", " Latest ", LatestPeriodRef(), false},
		{"uuid", id.String(), PeriodRefFor(id), false},
		{"garbage", "last-year", PeriodRef{}, true},
		{"empty", "", PeriodRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodRef(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriodRefString(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "latest", LatestPeriodRef().String())
	assert.Equal(t, id.String(), PeriodRefFor(id).String())
}
