package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, v, c, d string) {
	t.Helper()
	prevV, prevC, prevD := version, commit, date
	version, commit, date = v, c, d
	t.Cleanup(func() { version, commit, date = prevV, prevC, prevD })
}

func TestCurrent_DefaultsToDev(t *testing.T) {
	assert.Equal(t, "dev", Current())
}

func TestString(t *testing.T) {
	tests := []struct {
		name                string
		version, commit, dt string
		want                string
	}{
		{
			name:    "local build",
			version: "dev", commit: "unknown", dt: "unknown",
			want: "dev (commit unknown, built unknown)",
		},
		{
			name:    "release build",
			version: "v1.4.0", commit: "3f2c1ab", dt: "2026-10-01",
			want: "v1.4.0 (commit 3f2c1ab, built 2026-10-01)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, tt.dt)
			assert.Equal(t, tt.want, String())
			assert.Equal(t, tt.version, Current())
		})
	}
}
