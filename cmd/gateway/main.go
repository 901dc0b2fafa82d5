// The gateway binary serves the retail storage API. On start it provisions
// the backing resources and seeds baseline demo data in the background, then
// serves until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/abcretail/storage-gateway/cmd/flags"
	"github.com/abcretail/storage-gateway/httpserver"
	"github.com/abcretail/storage-gateway/secrets"
	"github.com/abcretail/storage-gateway/seeder"
	"github.com/abcretail/storage-gateway/storage"
)

func main() {
	// Optional .env for local development; ignore when absent.
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "gateway",
		Usage:  "Serve the retail storage API over tables, blobs, queue and contract files",
		Flags:  append(append([]cli.Flag{flags.ListenAddrFlag}, flags.StorageFlags...), flags.CommonFlags...),
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	cfg := storage.Config{
		Region:         cCtx.String(flags.RegionFlag.Name),
		Endpoint:       cCtx.String(flags.EndpointFlag.Name),
		AccessKey:      cCtx.String(flags.AccessKeyFlag.Name),
		SecretKey:      cCtx.String(flags.SecretKeyFlag.Name),
		CustomersTable: cCtx.String(flags.CustomersTableFlag.Name),
		ProductsTable:  cCtx.String(flags.ProductsTableFlag.Name),
		ImageBucket:    cCtx.String(flags.ImageBucketFlag.Name),
		QueueName:      cCtx.String(flags.QueueNameFlag.Name),
		ContractBucket: cCtx.String(flags.ContractBucketFlag.Name),
	}

	// A Vault path takes precedence over directly supplied keys.
	if vaultAddr := cCtx.String(flags.VaultAddrFlag.Name); vaultAddr != "" {
		vaultPath := cCtx.String(flags.VaultPathFlag.Name)
		if vaultPath == "" {
			logger.Error("vault-path is required when vault-addr is set")
			return cli.Exit("vault-path is required when vault-addr is set", 1)
		}

		source, err := secrets.NewVaultSource(vaultAddr, os.Getenv("VAULT_TOKEN"), vaultPath, logger)
		if err != nil {
			logger.Error("Failed to create Vault source", "err", err)
			return err
		}
		creds, err := source.Fetch(cCtx.Context)
		if err != nil {
			logger.Error("Failed to fetch credentials from Vault", "err", err)
			return err
		}
		cfg.AccessKey = creds.AccessKey
		cfg.SecretKey = creds.SecretKey
	}

	storageMetrics := storage.NewMetrics()
	store, err := storage.New(cfg, logger, storage.WithMetrics(storageMetrics))
	if err != nil {
		logger.Error("Failed to create storage client", "err", err)
		return err
	}

	serverCfg := flags.ConfigureServer(cCtx, logger)
	serverCfg.ListenAddr = cCtx.String(flags.ListenAddrFlag.Name)

	server, err := httpserver.New(serverCfg, httpserver.NewHandler(store, logger))
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}
	if err := storageMetrics.Register(server.Metrics().Registry()); err != nil {
		logger.Error("Failed to register storage metrics", "err", err)
		return err
	}

	// Seeding is fire-and-forget: the server accepts traffic regardless of
	// whether provisioning or seeding succeeds.
	seeder.New(store, logger).RunBackground(context.Background())

	logger.Info("Starting server")
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}
