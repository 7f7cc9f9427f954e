package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// closeTimeout bounds the graceful close after a successful attempt.
const closeTimeout = 5 * time.Second

var connectCmd = &cobra.Command{
	Use:   "connect [connection-string]",
	Short: "Make one timeout-bounded connection attempt",
	Long: `Connect resolves the connection string and makes a single connection
attempt. The attempt is bounded by the first of these that is set:

  --login-timeout           overrides every other source
  -P loginTimeout=SECONDS   overrides the connection string
  ?loginTimeout=SECONDS     in the connection string
  login_timeout             in the profile

On success the server version is printed and the connection is closed.
Interrupting the command (Ctrl+C) abandons the attempt; a connection that
completes afterwards is closed in the background.`,
	Example: `  fdbsql connect jdbc:fdbsql:orders -P user=app -P password=secret
  fdbsql connect "jdbc:fdbsql://sql1,sql2/orders" --login-timeout 3s -v`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

var connectFlags overlayFlagValues

func init() {
	rootCmd.AddCommand(connectCmd)
	addOverlayFlags(connectCmd, &connectFlags)
}

func runConnect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	connStr, err := s.connectionString(args)
	if err != nil {
		return err
	}
	overlay, err := s.overlay(cmd, &connectFlags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := s.registry.Connect(ctx, connStr, overlay)
	if errors.Is(err, fdbsql.ErrNoSuitableDriver) {
		// A malformed string is declined by the driver; report why.
		if _, ok, perr := s.driver.Parse(ctx, connStr, overlay); ok && perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	version := "unknown"
	if v, ok := conn.(interface{ ServerVersion() string }); ok && v.ServerVersion() != "" {
		version = v.ServerVersion()
	}
	st := newStyles(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), st.success.Render("Connected")+" to "+s.driver.Name()+" server "+version)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := conn.Close(closeCtx); err != nil {
		s.env.Logger().Verbose("close failed: %v", err)
	}
	return nil
}
