package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatisfies(t *testing.T) {
	c := MustParseConstraint("^1.2.0")

	assert.True(t, Satisfies(MustParseVersion("1.2.0"), c))
	assert.True(t, Satisfies(MustParseVersion("1.9.9"), c))
	assert.False(t, Satisfies(MustParseVersion("2.0.0"), c))
	assert.False(t, Satisfies(Version{}, c))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(MustParseVersion("1.0.0"), MustParseVersion("1.1.0")))
	assert.Equal(t, 0, Compare(MustParseVersion("1.1"), MustParseVersion("1.1.0")))
	assert.Equal(t, 1, Compare(MustParseVersion("2.0.0"), Version{}))
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"", false},
		{"1.0.0", false},
		{"1.4.2", false},
		{"0.9.0", true},
		{"2.0.0", true},
		{"not-a-version", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := CheckSchema(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseConstraint_Invalid(t *testing.T) {
	_, err := ParseConstraint(">>> nope")
	assert.Error(t, err)
	assert.Equal(t, SupportedSchema, supported.String())
}
