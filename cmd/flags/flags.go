// Package flags holds the cli flag definitions and setup helpers shared by
// the gateway binaries.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/abcretail/storage-gateway/common"
	"github.com/abcretail/storage-gateway/httpserver"
)

// SetupLogger builds the process logger from the common logging flags.
func SetupLogger(cCtx *cli.Context) *slog.Logger {
	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   cCtx.Bool(LogDebugFlag.Name),
		JSON:    cCtx.Bool(LogJSONFlag.Name),
		Service: cCtx.String(LogServiceFlag.Name),
		Version: common.Version,
	})

	if cCtx.Bool(LogUIDFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// ConfigureServer builds the HTTP server config from the server flags.
func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var RegionFlag = &cli.StringFlag{
	Name:    "aws-region",
	Value:   "us-east-1",
	Usage:   "AWS region for all storage backends",
	EnvVars: []string{"AWS_REGION"},
}

var EndpointFlag = &cli.StringFlag{
	Name:    "aws-endpoint",
	Usage:   "custom AWS endpoint for S3-compatible or local deployments",
	EnvVars: []string{"AWS_ENDPOINT"},
}

var AccessKeyFlag = &cli.StringFlag{
	Name:    "aws-access-key",
	Usage:   "AWS access key; empty falls back to the SDK credential chain",
	EnvVars: []string{"AWS_ACCESS_KEY_ID"},
}

var SecretKeyFlag = &cli.StringFlag{
	Name:    "aws-secret-key",
	Usage:   "AWS secret key; empty falls back to the SDK credential chain",
	EnvVars: []string{"AWS_SECRET_ACCESS_KEY"},
}

var CustomersTableFlag = &cli.StringFlag{
	Name:  "customers-table",
	Usage: "customers table name (default \"Customers\")",
}

var ProductsTableFlag = &cli.StringFlag{
	Name:  "products-table",
	Usage: "products table name (default \"Products\")",
}

var ImageBucketFlag = &cli.StringFlag{
	Name:  "image-bucket",
	Usage: "product image bucket name (default \"product-images\")",
}

var QueueNameFlag = &cli.StringFlag{
	Name:  "queue-name",
	Usage: "retail event queue name (default \"retail-events\")",
}

var ContractBucketFlag = &cli.StringFlag{
	Name:  "contract-bucket",
	Usage: "contract file bucket name (default \"contracts\")",
}

var VaultAddrFlag = &cli.StringFlag{
	Name:    "vault-addr",
	Usage:   "Vault address to fetch storage credentials from",
	EnvVars: []string{"VAULT_ADDR"},
}

var VaultPathFlag = &cli.StringFlag{
	Name:  "vault-path",
	Usage: "Vault KV v2 path (mount/path) holding access_key and secret_key",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "storage-gateway",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

// CommonFlags are shared by every gateway binary.
var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}

// StorageFlags configure the storage client.
var StorageFlags = []cli.Flag{
	RegionFlag,
	EndpointFlag,
	AccessKeyFlag,
	SecretKeyFlag,
	CustomersTableFlag,
	ProductsTableFlag,
	ImageBucketFlag,
	QueueNameFlag,
	ContractBucketFlag,
	VaultAddrFlag,
	VaultPathFlag,
}
