package cli

import (
	"github.com/spf13/cobra"
)

var parseErrorHandleFunc func(error)

// SetParseErrorHandle sets the function called when a flag value cannot be
// read, e.g. because the flag was never registered. Getters return the zero
// value after calling it.
//
//	cli.SetParseErrorHandle(func(err error) {
//		fmt.Println(err)
//		os.Exit(128)
//	})
func SetParseErrorHandle(f func(error)) {
	parseErrorHandleFunc = f
}

// GetStringFlagValue returns the value of flag from the local flags of cmd,
// which include the persistent flags of its parents once parsed.
func GetStringFlagValue(cmd *cobra.Command, flag StringFlag) string {
	val, err := cmd.Flags().GetString(flag.Name)
	return checkParse(val, err, "").(string)
}

func GetBoolFlagValue(cmd *cobra.Command, flag BoolFlag) bool {
	val, err := cmd.Flags().GetBool(flag.Name)
	return checkParse(val, err, false).(bool)
}

func GetIntFlagValue(cmd *cobra.Command, flag IntFlag) int {
	val, err := cmd.Flags().GetInt(flag.Name)
	return checkParse(val, err, 0).(int)
}

func GetUint64FlagValue(cmd *cobra.Command, flag Uint64Flag) uint64 {
	val, err := cmd.Flags().GetUint64(flag.Name)
	return checkParse(val, err, uint64(0)).(uint64)
}

// IsFlagChanged returns whether the user set flag on the command line.
func IsFlagChanged(cmd *cobra.Command, flag Flag) bool {
	return cmd.Flags().Changed(getFlagName(flag))
}

// HasFlagsChanged returns whether the user set any of flags.
func HasFlagsChanged(cmd *cobra.Command, flags []Flag) bool {
	for _, flag := range flags {
		if IsFlagChanged(cmd, flag) {
			return true
		}
	}
	return false
}

func checkParse(val interface{}, err error, zero interface{}) interface{} {
	if err == nil {
		return val
	}
	if parseErrorHandleFunc != nil {
		parseErrorHandleFunc(err)
	}
	return zero
}
