package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags adds flags to the local flag set of cmd.
func RegisterFlags(cmd *cobra.Command, flags []Flag) error {
	return registerAll(cmd.Flags(), flags)
}

// RegisterPFlags adds flags to the persistent flag set of cmd, making them
// visible to every sub command.
func RegisterPFlags(cmd *cobra.Command, flags []Flag) error {
	return registerAll(cmd.PersistentFlags(), flags)
}

func registerAll(fs *pflag.FlagSet, flags []Flag) error {
	for _, flag := range flags {
		if err := flag.RegisterTo(fs); err != nil {
			return errors.Wrapf(err, "cannot register flag %s", getFlagName(flag))
		}
	}
	return nil
}
