package pgwire

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bowlofstew/sql-layer-adapter-go/pkg/fdbsql"
)

// AzureDatabaseScope is the OAuth scope Entra ID issues database tokens for.
const AzureDatabaseScope = "https://ossrdbms-aad.database.windows.net/.default"

// tokenExpiryWarning is how close to expiry a freshly issued token may be
// before a warning is logged.
const tokenExpiryWarning = 5 * time.Minute

// TokenProvider acquires a short-lived token used as the password.
type TokenProvider interface {
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider without secrets.
	String() string
}

// ProviderFactory creates a TokenProvider for one connection request.
type ProviderFactory func(props *fdbsql.ResolvedProperties) (TokenProvider, error)

func (d *Driver) applyToken(ctx context.Context, cfg *pgconn.Config, props *fdbsql.ResolvedProperties, method string, factory ProviderFactory) error {
	provider, err := factory(props)
	if err != nil {
		return connectionError(fmt.Sprintf("authMethod=%s is not configured", method), err)
	}
	token, expiresOn, err := provider.GetToken(ctx)
	if err != nil {
		return connectionError(fmt.Sprintf("failed to acquire %s token", provider), err)
	}
	if left := time.Until(expiresOn); left < tokenExpiryWarning {
		d.env.Logger().Info("%s token expires in %v", provider, left.Round(time.Second))
	}

	cfg.Password = token
	if cfg.TLSConfig == nil {
		d.env.Logger().Verbose("%s tokens are usually only accepted over TLS; consider setting ssl", method)
	}
	return nil
}

// AWSIAMTokenProvider signs RDS IAM authentication tokens with the default
// AWS credential chain.
type AWSIAMTokenProvider struct {
	endpoint string
	region   string
	username string
}

func newAWSProvider(props *fdbsql.ResolvedProperties) (TokenProvider, error) {
	region, _ := props.Get(PropAWSRegion)
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	return NewAWSIAMTokenProvider(props.Hosts()[0].String(), region, props.User())
}

// NewAWSIAMTokenProvider validates its inputs. endpoint is host:port.
func NewAWSIAMTokenProvider(endpoint, region, username string) (*AWSIAMTokenProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("AWS IAM auth requires endpoint (host:port)")
	}
	if region == "" {
		return nil, fmt.Errorf("AWS IAM auth requires region (set %s or $AWS_REGION)", PropAWSRegion)
	}
	if username == "" {
		return nil, fmt.Errorf("AWS IAM auth requires database username")
	}
	return &AWSIAMTokenProvider{endpoint: endpoint, region: region, username: username}, nil
}

// GetToken builds a token valid for 15 minutes.
func (p *AWSIAMTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(p.region))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	token, err := auth.BuildAuthToken(ctx, p.endpoint, p.region, p.username, cfg.Credentials)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build RDS auth token: %w", err)
	}
	return token, time.Now().Add(15 * time.Minute), nil
}

func (p *AWSIAMTokenProvider) String() string {
	return fmt.Sprintf("AWSIAMTokenProvider(endpoint=%s, region=%s, user=%s)", p.endpoint, p.region, p.username)
}

// AzureTokenProvider acquires Entra ID tokens, from a service principal when
// one is configured and from the default credential chain otherwise.
type AzureTokenProvider struct {
	credential azcore.TokenCredential
	desc       string
}

func newAzureProvider(props *fdbsql.ResolvedProperties) (TokenProvider, error) {
	tenant, _ := props.Get(PropAzureTenantID)
	client, _ := props.Get(PropAzureClientID)
	secret, _ := props.Get(PropAzureClientSecret)

	if tenant == "" && client == "" && secret == "" {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
		}
		return &AzureTokenProvider{credential: cred, desc: "AzureDefaultCredential"}, nil
	}
	if tenant == "" || client == "" || secret == "" {
		return nil, fmt.Errorf("azure service principal requires %s, %s and %s",
			PropAzureTenantID, PropAzureClientID, PropAzureClientSecret)
	}
	cred, err := azidentity.NewClientSecretCredential(tenant, client, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return &AzureTokenProvider{
		credential: cred,
		desc:       fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", tenant, client),
	}, nil
}

func (p *AzureTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzureDatabaseScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

func (p *AzureTokenProvider) String() string { return p.desc }

// CloudDialer dials Cloud SQL instances.
type CloudDialer interface {
	Dial(ctx context.Context, instance string, opts ...cloudsqlconn.DialOption) (net.Conn, error)
	Close() error
}

// CloudDialerFactory creates a CloudDialer; iam selects IAM database
// authentication.
type CloudDialerFactory func(ctx context.Context, iam bool) (CloudDialer, error)

func newCloudSQLDialer(ctx context.Context, iam bool) (CloudDialer, error) {
	var opts []cloudsqlconn.Option
	if iam {
		opts = append(opts, cloudsqlconn.WithIAMAuthN())
	}
	dialer, err := cloudsqlconn.NewDialer(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return dialer, nil
}

// useCloudSQL routes every dial through a Cloud SQL dialer. The returned
// func releases the dialer and must run once the connection is closed.
func (d *Driver) useCloudSQL(ctx context.Context, cfg *pgconn.Config, instance string, iam bool) (func(), error) {
	dialer, err := d.cloudDials(ctx, iam)
	if err != nil {
		return nil, connectionError("failed to create Cloud SQL dialer", err)
	}
	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	cfg.DialFunc = dial
	return func() { _ = dialer.Close() }, nil
}
