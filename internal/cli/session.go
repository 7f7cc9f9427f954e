package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/config"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/driver"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/driver/pgwire"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/logging"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

const profileFileName = config.ConfigFileName

// session is the driver wiring shared by every command invocation.
type session struct {
	env      *driver.Environment
	driver   *pgwire.Driver
	registry *driver.Registry
	profile  *config.Profile
}

func newSession(cmd *cobra.Command) (*session, error) {
	_ = godotenv.Load()

	profile, err := loadProfile(globalFlags.configPath)
	if err != nil {
		return nil, err
	}

	levels := logging.NewController()
	env := driver.NewEnvironment(
		driver.WithLevels(levels),
		driver.WithLogger(logging.NewConsoleLogger(cmd.ErrOrStderr(), levels)),
	)

	if level, ok, err := profile.Level(); err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindConfigLoad, "invalid log_level in "+profileFileName, err)
	} else if ok {
		if err := env.SetLogLevel(level); err != nil {
			return nil, fdbsql.WrapError(fdbsql.KindConfigLoad, "invalid log_level in "+profileFileName, err)
		}
	}
	if globalFlags.verbose {
		if err := env.SetLogLevel(fdbsql.LogDebug); err != nil {
			return nil, err
		}
	}

	if timeout, ok, err := profile.Timeout(); err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindConfigLoad, "invalid login_timeout in "+profileFileName, err)
	} else if ok {
		env.SetDefaultLoginTimeout(timeout)
	}

	pg := pgwire.New(env)
	return &session{
		env:      env,
		driver:   pg,
		registry: driver.NewRegistry(pg),
		profile:  profile,
	}, nil
}

// loadProfile reads the profile named by path, or ./fdbsql.yaml when path is
// empty. A missing default profile is not an error.
func loadProfile(path string) (*config.Profile, error) {
	if path == "" {
		p, err := config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			return &config.Profile{}, nil
		}
		if err != nil {
			return nil, fdbsql.WrapError(fdbsql.KindConfigLoad, "failed to load "+profileFileName, err)
		}
		return p, nil
	}
	p, err := config.LoadFile(path)
	if err != nil {
		return nil, fdbsql.WrapError(fdbsql.KindConfigLoad, "failed to load profile "+path, err)
	}
	return p, nil
}

// connectionString picks the positional argument, falling back to the
// profile url.
func (s *session) connectionString(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if s.profile.URL != "" {
		return s.profile.URL, nil
	}
	return "", fmt.Errorf("requires at least 1 arg(s): a connection string, or url in %s", profileFileName)
}

// overlayFlagValues are the property flags shared by describe, parse and
// connect.
type overlayFlagValues struct {
	properties   []string
	loginTimeout time.Duration
}

func addOverlayFlags(cmd *cobra.Command, v *overlayFlagValues) {
	cmd.Flags().StringArrayVarP(&v.properties, "property", "P", nil,
		"Connection property as key=value (repeatable)")
	cmd.Flags().DurationVar(&v.loginTimeout, "login-timeout", 0,
		"Bound on the connection attempt, e.g. 5s (overrides any loginTimeout property)")
}

// overlay merges the profile properties with the command line ones.
// Command line values win.
func (s *session) overlay(cmd *cobra.Command, v *overlayFlagValues) (map[string]any, error) {
	out := s.profile.Overlay()
	flags, err := parsePropertyFlags(v.properties)
	if err != nil {
		return nil, err
	}
	maps.Copy(out, flags)
	if f := cmd.Flags().Lookup("login-timeout"); f != nil && f.Changed {
		out[fdbsql.PropLoginTimeout] = strconv.FormatFloat(v.loginTimeout.Seconds(), 'f', -1, 64)
	}
	return out, nil
}

func parsePropertyFlags(values []string) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q for --property: expected key=value", kv)
		}
		out[key] = value
	}
	return out, nil
}

// redact hides secrets in property listings.
func redact(key, value string) string {
	if key == fdbsql.PropPassword || key == pgwire.PropAzureClientSecret {
		if value == "" {
			return ""
		}
		return "********"
	}
	return value
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
