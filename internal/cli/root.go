package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fdbsql",
	Short: "FoundationDB SQL Layer connection tool",
	Long: `fdbsql resolves jdbc:fdbsql: connection strings the way the driver does
and makes timeout-bounded connection attempts against a SQL Layer server.

Connection strings:
  jdbc:fdbsql://host1[:port1][,host2[:port2]...]/database[?key=value&...]
  jdbc:fdbsql:database

Driver defaults are read from driverconfig.properties found along
$FDBSQL_CONFIG_PATH, the user configuration directory and /etc/fdbsql.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Malformed connection string, overlay or configuration
  11 - Connection failed
  12 - Connection attempt timed out
  13 - Interrupted while connecting
  14 - No suitable driver for the connection string`,
	SilenceUsage: true,
}

type globalFlagValues struct {
	verbose    bool
	configPath string
}

var globalFlags globalFlagValues

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false,
		"Set the driver log level to DEBUG")
	rootCmd.PersistentFlags().StringVar(&globalFlags.configPath, "config", "",
		fmt.Sprintf("Profile to load (default: ./%s when present)", profileFileName))
}
