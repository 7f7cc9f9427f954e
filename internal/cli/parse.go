package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

var parseCmd = &cobra.Command{
	Use:   "parse [connection-string]",
	Short: "Resolve a connection string without connecting",
	Long: `Parse resolves a connection string exactly as connect would: discovered
driver defaults, then query parameters, then -P flags, with the host, port
and database from the string itself always winning.

The resolved hosts, database, TLS mode, login timeout and the full property
set are printed. Passwords and client secrets are redacted.`,
	Example: `  fdbsql parse jdbc:fdbsql:orders
  fdbsql parse "jdbc:fdbsql://[::1]:15432/orders?ssl=true" -P user=app`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var parseFlags overlayFlagValues

func init() {
	rootCmd.AddCommand(parseCmd)
	addOverlayFlags(parseCmd, &parseFlags)
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	connStr, err := s.connectionString(args)
	if err != nil {
		return err
	}
	overlay, err := s.overlay(cmd, &parseFlags)
	if err != nil {
		return err
	}

	props, ok, err := s.driver.Parse(commandContext(cmd), connStr, overlay)
	if !ok {
		return fmt.Errorf("%w for %q", fdbsql.ErrNoSuitableDriver, connStr)
	}
	if err != nil {
		return err
	}

	cfg, err := s.driver.Config(props)
	if err != nil {
		return err
	}
	tlsMode := "disable"
	if cfg.TLSConfig != nil {
		tlsMode = "require"
	}

	printResolved(cmd.OutOrStdout(), s.driver.Name(), props, tlsMode, s.driver.LoginTimeout(props))
	return nil
}

func printResolved(w io.Writer, driverName string, props *fdbsql.ResolvedProperties, tlsMode string, timeout time.Duration) {
	st := newStyles(w)

	hosts := props.Hosts()
	addrs := make([]string, len(hosts))
	for i, h := range hosts {
		addrs[i] = h.String()
	}

	loginTimeout := "unbounded"
	if timeout > 0 {
		loginTimeout = timeout.String()
	}

	fmt.Fprintln(w, st.title.Render("Resolved connection"))
	st.field(w, "Driver", driverName)
	st.field(w, "Hosts", strings.Join(addrs, ", "))
	st.field(w, "Database", props.Database())
	st.field(w, "User", orDash(props.User()))
	st.field(w, "TLS", tlsMode)
	st.field(w, "Login timeout", loginTimeout)
	fmt.Fprintln(w)

	all := props.Properties()
	rows := make([][]string, 0, len(all))
	for _, key := range all.Keys() {
		rows = append(rows, []string{key, redact(key, all[key])})
	}
	fmt.Fprintln(w, st.renderTable([]string{"PROPERTY", "VALUE"}, rows))
}
