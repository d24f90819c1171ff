package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	versionFormat = "txpoolsim %v-%v (%v %v)"
)

// Version string variables
var (
	version string
	builtBy string
	builtAt string
	commit  string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version of the txpoolsim binary",
	Long:  "print version of the txpoolsim binary",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(getVersion())
	},
}

func getVersion() string {
	return fmt.Sprintf(versionFormat, version, commit, builtBy, builtAt)
}
