package fdbsql

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Command completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration, overlay or connection string
	ExitConnectionError = 11 // Failed to connect to database
	ExitTimeout         = 12 // Connection attempt timed out
	ExitCancelled       = 13 // Interrupted while waiting for a connection
	ExitNoDriver        = 14 // No registered driver accepts the connection string
)

// Reserved keys derived from the connection string. They always override
// same-named values from lower layers.
const (
	PropHost     = "PGHOST"
	PropPort     = "PGPORT"
	PropDatabase = "PGDBNAME"
)

// Well-known property names.
const (
	PropUser                  = "user"
	PropPassword              = "password"
	PropSSL                   = "ssl"
	PropSSLFactory            = "sslfactory"
	PropSSLFactoryArg         = "sslfactoryarg"
	PropLogLevel              = "loglevel"
	PropLoginTimeout          = "loginTimeout"
	PropSocketTimeout         = "socketTimeout"
	PropTCPKeepAlive          = "tcpKeepAlive"
	PropBinaryTransfer        = "binaryTransfer"
	PropBinaryTransferEnable  = "binaryTransferEnable"
	PropBinaryTransferDisable = "binaryTransferDisable"
	PropCompatible            = "compatible"
	PropStringType            = "stringtype"
	PropProtocolVersion       = "protocolVersion"
	PropApplicationName       = "ApplicationName"
)

const (
	// DefaultHost is used by the short connection string form, which names
	// only a database.
	DefaultHost = "localhost"

	// DefaultDisposeTimeout bounds how long an abandoned connection may take
	// to close once its attempt finally completes.
	DefaultDisposeTimeout = 10 * time.Second

	// ConfigPathEnv lists extra directories (os.PathListSeparator separated)
	// searched for driver configuration resources, highest precedence first.
	ConfigPathEnv = "FDBSQL_CONFIG_PATH"
)
