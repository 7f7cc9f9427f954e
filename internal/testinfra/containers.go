// Package testinfra starts disposable wire-compatible SQL servers for the
// integration suites.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	ServerImage    = "postgres:17"
	ServerUser     = "fdbsql"
	ServerPassword = "fdbsql"
	ServerDatabase = "fdbsql"

	containerCertDir  = "/tmp/testcontainers-go/postgres"
	sslEntrypointPath = "/usr/local/bin/docker-entrypoint-ssl.bash"
	startupTimeout    = 60 * time.Second
)

// Server is a running container reachable from the host.
type Server struct {
	*postgres.PostgresContainer
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// URL returns a jdbc:fdbsql: connection string for the server. query is
// appended verbatim when non-empty.
func (s *Server) URL(query string) string {
	u := fmt.Sprintf("jdbc:fdbsql://%s:%d/%s", s.Host, s.Port, s.Database)
	if query != "" {
		u += "?" + query
	}
	return u
}

// StartServer runs a plaintext server.
func StartServer(ctx context.Context) (*Server, error) {
	return run(ctx, "start server")
}

// StartTLSServer runs a server that also accepts TLS using certPaths.
func StartTLSServer(ctx context.Context, certPaths *CertPaths) (*Server, error) {
	confPath, err := writeSSLConfig(filepath.Dir(certPaths.CACert))
	if err != nil {
		return nil, err
	}
	return run(ctx, "start TLS server",
		postgres.WithSSLCert(certPaths.CACert, certPaths.ServerCert, certPaths.ServerKey),
		postgres.WithConfigFile(confPath),
		// WithSSLCert sets entrypoint to "sh" which fails on Debian (dash doesn't support pipefail).
		testcontainers.WithEntrypoint("bash", sslEntrypointPath),
	)
}

func run(ctx context.Context, what string, extra ...testcontainers.ContainerCustomizer) (*Server, error) {
	opts := append([]testcontainers.ContainerCustomizer{
		postgres.WithUsername(ServerUser),
		postgres.WithPassword(ServerPassword),
		postgres.WithDatabase(ServerDatabase),
	}, extra...)
	opts = append(opts, testcontainers.WithWaitStrategy(
		wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(startupTimeout),
	))

	ctr, err := postgres.Run(ctx, ServerImage, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("container host: %w", err)
	}
	mapped, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("container port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("container port %q: %w", mapped.Port(), err)
	}

	return &Server{
		PostgresContainer: ctr,
		Host:              host,
		Port:              port,
		Database:          ServerDatabase,
		User:              ServerUser,
		Password:          ServerPassword,
	}, nil
}

func writeSSLConfig(dir string) (string, error) {
	conf := fmt.Sprintf(`listen_addresses = '*'
ssl = on
ssl_cert_file = '%s/server.cert'
ssl_key_file = '%s/server.key'
ssl_ca_file = '%s/ca_cert.pem'
`, containerCertDir, containerCertDir, containerCertDir)

	path := filepath.Join(dir, "postgresql.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		return "", fmt.Errorf("write postgresql.conf: %w", err)
	}
	return path, nil
}
