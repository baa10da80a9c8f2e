package cmd

import "fmt"

var (
	// Version is set during build time
	Version = "dev"
	// GitCommit is set during build time
	GitCommit = "unknown"
	// BuildDate is set during build time
	BuildDate = "unknown"
)

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("prdgate {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))
}
