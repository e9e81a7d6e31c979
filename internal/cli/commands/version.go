package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/covidlens/internal/dashboard"
)

// BuildInfo identifies the running binary. Commit and Date are stamped by the
// release build; local builds leave them "unknown".
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Print the covidlens release, the commit and date it was built from,
the Go toolchain and platform, and the number of dashboard views it ships.`,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(w, info.Version)
				return
			}
			_, _ = fmt.Fprintf(w, "covidlens %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "  commit:  %s\n", orUnknown(info.Commit))
			_, _ = fmt.Fprintf(w, "  built:   %s\n", orUnknown(info.Date))
			_, _ = fmt.Fprintf(w, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			_, _ = fmt.Fprintf(w, "  views:   %d\n", len(dashboard.Kinds()))
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print the version number only")

	return cmd
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
