package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseROCDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "slash separated",
			input: "113/05/01",
			want:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dot separated",
			input: "99.12.31",
			want:  time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "dash separated",
			input: "115-01-15",
			want:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "gregorian year rejected",
			input:   "2024/05/01",
			wantErr: true,
		},
		{
			name:    "month out of range",
			input:   "113/13/01",
			wantErr: true,
		},
		{
			name:    "not a date",
			input:   "soon",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseROCDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLegacyDate(t *testing.T) {
	iso, err := ParseLegacyDate("2026-06-30")
	require.NoError(t, err)
	assert.Equal(t, MustParseDate("2026-06-30"), iso)

	roc, err := ParseLegacyDate("113/06/30")
	require.NoError(t, err)
	assert.Equal(t, MustParseDate("2024-06-30"), roc)

	// Workbook export with a time component keeps only the date.
	stamped, err := ParseLegacyDate("2024-05-01 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, MustParseDate("2024-05-01"), stamped)

	rfc, err := ParseLegacyDate("2024-05-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, MustParseDate("2024-05-01"), rfc)

	_, err = ParseLegacyDate("next month")
	require.Error(t, err)
}
