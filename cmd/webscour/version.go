package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/webscour/internal/index"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo describes the running binary. Values given through ldflags win
// over the module build info; missing values get a placeholder.
type buildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
}

var currentBuild = sync.OnceValue(func() buildInfo {
	bi, _ := debug.ReadBuildInfo()
	return resolveBuildInfo(bi, version, commit, date)
})

// resolveBuildInfo merges ldflags values over bi, which may be nil.
func resolveBuildInfo(bi *debug.BuildInfo, ldVersion, ldCommit, ldDate string) buildInfo {
	info := buildInfo{
		Version:   "(devel)",
		Commit:    "unknown",
		Date:      "unknown",
		GoVersion: "unknown",
	}

	if bi != nil {
		if bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
			case "vcs.time":
				info.Date = s.Value
			}
		}
	}

	if ldVersion != "" {
		info.Version = ldVersion
	}
	if ldCommit != "" {
		info.Commit = ldCommit
	}
	if ldDate != "" {
		info.Date = ldDate
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// getVersion is the version stamped into reports and --version.
func getVersion() string {
	return currentBuild().Version
}

func (b buildInfo) write(w io.Writer) {
	fmt.Fprintf(w, "webscour version %s\n", b.Version)
	fmt.Fprintf(w, "  commit: %s\n", b.Commit)
	fmt.Fprintf(w, "  built:  %s\n", b.Date)
	fmt.Fprintf(w, "  go:     %s\n", b.GoVersion)
	fmt.Fprintf(w, "  index:  %s + %s\n", index.InvertedIndexFile, index.IDFFile)
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version, commit, build date and Go toolchain of webscour,
and the file names of the index pair it reads and writes.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := currentBuild()
			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return
			}
			info.write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Print only the version")
	return cmd
}
