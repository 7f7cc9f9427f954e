// Package pgwire is the FoundationDB SQL Layer driver. The SQL Layer speaks
// the PostgreSQL wire protocol, so connections are made with pgconn.
package pgwire

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bowlofstew/sql-layer-adapter-go/internal/catalog"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/driver"
	"github.com/bowlofstew/sql-layer-adapter-go/internal/resource"
	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

const (
	Scheme       = "jdbc:fdbsql:"
	DefaultPort  = 15432
	DriverName   = "FoundationDB SQL Layer"
	ResourceName = "driverconfig.properties"
)

//go:embed driverconfig.properties
var builtinFS embed.FS

// Driver-specific property names.
const (
	PropAuthMethod        = "authMethod"
	PropAWSRegion         = "awsRegion"
	PropAzureTenantID     = "azureTenantId"
	PropAzureClientID     = "azureClientId"
	PropAzureClientSecret = "azureClientSecret"
	PropCloudSQLInstance  = "cloudSqlInstance"
)

// Authentication methods accepted by the authMethod property.
const (
	AuthPassword   = "password"
	AuthAWSIAM     = "aws-iam"
	AuthAzureEntra = "azure-entra"
	AuthGoogleIAM  = "google-iam"
)

var extraProperties = []catalog.Entry{
	{Name: fdbsql.PropApplicationName,
		Description: "Name reported to the server as application_name."},
	{Name: PropAuthMethod,
		Description: "How to obtain the password: a static password, or a short-lived cloud IAM token.",
		Choices:     []string{AuthPassword, AuthAWSIAM, AuthAzureEntra, AuthGoogleIAM}},
	{Name: PropAWSRegion,
		Description: "AWS region used to sign RDS IAM tokens; defaults to $AWS_REGION."},
	{Name: PropAzureTenantID,
		Description: "Entra ID tenant of the service principal; omit to use the default Azure credential chain."},
	{Name: PropAzureClientID,
		Description: "Client ID of the service principal."},
	{Name: PropAzureClientSecret,
		Description: "Client secret of the service principal."},
	{Name: PropCloudSQLInstance,
		Description: "Cloud SQL instance connection name (project:region:instance); connections are dialed through the Cloud SQL connector."},
}

// Driver connects to the FoundationDB SQL Layer.
type Driver struct {
	*driver.Base

	env        *driver.Environment
	providers  map[string]ProviderFactory
	cloudDials CloudDialerFactory
}

var (
	_ fdbsql.Capabilities     = (*Driver)(nil)
	_ driver.DefaultsProvider = (*Driver)(nil)
	_ driver.Driver           = (*Driver)(nil)
)

// Option configures a Driver.
type Option func(*Driver)

// WithTokenProvider replaces the token provider factory for an auth method.
func WithTokenProvider(method string, factory ProviderFactory) Option {
	return func(d *Driver) { d.providers[method] = factory }
}

// WithCloudDialer replaces how Cloud SQL dialers are created.
func WithCloudDialer(factory CloudDialerFactory) Option {
	return func(d *Driver) { d.cloudDials = factory }
}

// New creates the driver bound to env.
func New(env *driver.Environment, opts ...Option) *Driver {
	d := &Driver{
		env: env,
		providers: map[string]ProviderFactory{
			AuthAWSIAM:     newAWSProvider,
			AuthAzureEntra: newAzureProvider,
		},
		cloudDials: newCloudSQLDialer,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Base = driver.NewBase(d, env, extraProperties...)
	return d
}

func (d *Driver) Scheme() string       { return Scheme }
func (d *Driver) DefaultPort() int     { return DefaultPort }
func (d *Driver) Name() string         { return DriverName }
func (d *Driver) ResourceName() string { return ResourceName }

// DefaultResources returns the built-in driverconfig.properties.
func (d *Driver) DefaultResources() resource.Source {
	return resource.NewEmbedSource(builtinFS, ".")
}

// MakeConnection performs one blocking connection attempt.
func (d *Driver) MakeConnection(ctx context.Context, props *fdbsql.ResolvedProperties) (fdbsql.Conn, error) {
	logger := d.env.Logger()

	plan, err := d.plan(ctx, props)
	if err != nil {
		return nil, err
	}

	pg, err := pgconn.ConnectConfig(ctx, plan.config)
	if err != nil {
		plan.release()
		return nil, mapConnectError(err, props)
	}
	logger.Info("connected to %s server %s", DriverName, pg.ParameterStatus("server_version"))
	return &Conn{pg: pg, env: d.env, release: plan.release}, nil
}

// Config returns the pgconn configuration MakeConnection would use,
// without connecting. Cloud dialers and tokens are not acquired.
func (d *Driver) Config(props *fdbsql.ResolvedProperties) (*pgconn.Config, error) {
	return buildConfig(props, d.env.Logger())
}

type connectPlan struct {
	config  *pgconn.Config
	release func()
}

func (d *Driver) plan(ctx context.Context, props *fdbsql.ResolvedProperties) (*connectPlan, error) {
	cfg, err := buildConfig(props, d.env.Logger())
	if err != nil {
		return nil, err
	}
	plan := &connectPlan{config: cfg, release: func() {}}

	method, _ := props.Get(PropAuthMethod)
	switch method {
	case "", AuthPassword:
	case AuthGoogleIAM:
		if _, ok := props.Get(PropCloudSQLInstance); !ok {
			return nil, connectionError(fmt.Sprintf("authMethod=%s requires %s", method, PropCloudSQLInstance), nil)
		}
	default:
		factory, ok := d.providers[method]
		if !ok {
			return nil, connectionError(fmt.Sprintf("unsupported authMethod %q", method), nil)
		}
		if err := d.applyToken(ctx, cfg, props, method, factory); err != nil {
			return nil, err
		}
	}

	if instance, ok := props.Get(PropCloudSQLInstance); ok && instance != "" {
		release, err := d.useCloudSQL(ctx, cfg, instance, method == AuthGoogleIAM)
		if err != nil {
			return nil, err
		}
		plan.release = release
	}
	return plan, nil
}
