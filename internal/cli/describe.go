package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe [connection-string]",
	Short: "List the connection properties the driver recognizes",
	Long: `Describe lists every property the driver recognizes together with the
value supplied by the connection string and -P flags.

A malformed connection string is tolerated: the listing then reflects the
-P flags and profile properties alone. Passwords and client secrets are
redacted.`,
	Example: `  fdbsql describe
  fdbsql describe "jdbc:fdbsql://sql1,sql2:15433/orders?user=app"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

var describeFlags overlayFlagValues

func init() {
	rootCmd.AddCommand(describeCmd)
	addOverlayFlags(describeCmd, &describeFlags)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	overlay, err := s.overlay(cmd, &describeFlags)
	if err != nil {
		return err
	}

	var connStr string
	if len(args) > 0 {
		connStr = args[0]
	} else {
		connStr = s.profile.URL
	}

	infos, err := s.driver.PropertyInfo(connStr, overlay)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		value := "-"
		if info.Present {
			value = redact(info.Name, info.Value)
		}
		rows = append(rows, []string{
			info.Name,
			yesNo(info.Required),
			value,
			orDash(strings.Join(info.Choices, "|")),
			info.Description,
		})
	}

	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintln(out, st.title.Render(s.driver.Name()+" connection properties"))
	fmt.Fprintln(out, st.renderTable([]string{"PROPERTY", "REQUIRED", "VALUE", "CHOICES", "DESCRIPTION"}, rows))
	return nil
}
