package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, info BuildInfo, args ...string) string {
	t.Helper()
	cmd := NewVersionCommand(info)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want []string
	}{
		{
			name: "release build",
			info: BuildInfo{Version: "1.2.3", Commit: "4f2a9c1", Date: "2021-06-01"},
			want: []string{"covidlens 1.2.3\n", "commit:  4f2a9c1", "built:   2021-06-01"},
		},
		{
			name: "local build",
			info: BuildInfo{Version: "dev"},
			want: []string{"covidlens dev\n", "commit:  unknown", "built:   unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runVersion(t, tt.info)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
			assert.Contains(t, out, runtime.Version())
			assert.Contains(t, out, "views:   11")
		})
	}
}

func TestVersionCommand_Short(t *testing.T) {
	out := runVersion(t, BuildInfo{Version: "1.2.3", Commit: "4f2a9c1"}, "--short")
	assert.Equal(t, "1.2.3\n", out)
}
