package main

import (
	"fmt"

	"github.com/spf13/cobra"

	txpoolconfig "github.com/NomicFoundation/hardhat-sub012/internal/configs/txpool"
)

var dumpConfigCmd = &cobra.Command{
	Use:   "dumpconfig [config_file]",
	Short: "dump the default config file",
	Long:  "txpoolsim dumpconfig [config_file] to dump the default config to file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := txpoolconfig.Dump(txpoolconfig.GetDefaultConfigCopy(), args[0]); err != nil {
			return err
		}
		fmt.Println("Config dumped to", args[0])
		return nil
	},
}
