package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/NomicFoundation/hardhat-sub012/internal/cli"
	txpoolconfig "github.com/NomicFoundation/hardhat-sub012/internal/configs/txpool"
	"github.com/NomicFoundation/hardhat-sub012/internal/utils"
)

var rootCmd = &cobra.Command{
	Use:   "txpoolsim",
	Short: "simulate transaction pool admission and block selection",
	Long: "txpoolsim feeds the signed transactions of a scenario file to a transaction pool, " +
		"prints the resulting pending and queued sets and builds blocks from them.",
	SilenceUsage: true,
}

var (
	configFlag = cli.StringFlag{
		Name:      "config",
		Usage:     "load pool config from the config toml file.",
		Shorthand: "c",
		DefValue:  "",
	}
	verbosityFlag = cli.IntFlag{
		Name:     "verbosity",
		Usage:    "logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		DefValue: txpoolconfig.GetDefaultConfigCopy().Log.Verbosity,
	}
	logToFileFlag = cli.BoolFlag{
		Name:     "log.file",
		Usage:    "write logs to the file set in the Log section of the config",
		DefValue: false,
	}
)

func init() {
	cli.SetParseErrorHandle(func(err error) {
		fmt.Println(err)
		os.Exit(128)
	})
	if err := cli.RegisterPFlags(rootCmd, []cli.Flag{configFlag, verbosityFlag, logToFileFlag}); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	if err := registerRunFlags(); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	rootCmd.AddCommand(runCmd, dumpConfigCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfig loads the config file given by --config, or the defaults, and
// applies the flags the user set explicitly.
func getConfig(cmd *cobra.Command) (txpoolconfig.Config, error) {
	config := txpoolconfig.GetDefaultConfigCopy()
	if file := cli.GetStringFlagValue(cmd, configFlag); file != "" {
		var err error
		if config, err = txpoolconfig.Load(file); err != nil {
			return txpoolconfig.Config{}, err
		}
	}
	if cli.IsFlagChanged(cmd, verbosityFlag) {
		config.Log.Verbosity = cli.GetIntFlagValue(cmd, verbosityFlag)
	}
	return config, nil
}

func setupLog(cmd *cobra.Command, config txpoolconfig.Config) {
	if cli.GetBoolFlagValue(cmd, logToFileFlag) {
		file := filepath.Join(config.Log.Folder, config.Log.FileName)
		if err := utils.AddLogFile(file, config.Log.RotateSize); err != nil {
			utils.FatalErrMsg(err, "cannot open log file")
		}
	}
	if config.Log.Context != nil {
		utils.SetLogContext("name", config.Log.Context.Name)
	}
	utils.SetLogVerbosity(log.Lvl(config.Log.Verbosity))
}
