// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/hyperbridge/messenger/api"
	"github.com/hyperbridge/messenger/clients"
	"github.com/hyperbridge/messenger/config"
	"github.com/hyperbridge/messenger/dispatcher"
	"github.com/hyperbridge/messenger/history"
	"github.com/hyperbridge/messenger/metrics"
	"github.com/hyperbridge/messenger/registry"
	"github.com/hyperbridge/messenger/simulate"
	"github.com/hyperbridge/messenger/utils"
	"github.com/hyperbridge/messenger/wallet"
	"github.com/hyperbridge/messenger/watcher"
	"github.com/hyperbridge/messenger/workflow"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "messenger",
	Short: "Cross-chain messenger demo",
	Long: `Messenger sends a short text message from one test network to another
through on-chain mailbox contracts and polls the destination chain for the
matching delivery event. Without a configured wallet it runs in simulation
mode.`,
	Version: fmt.Sprintf("%s (built %s)", version, buildDate),
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(config.BuildFlagSet())
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(chainsCmd)

	sendCmd.Flags().Uint64("source", 0, "Source chain id")
	sendCmd.Flags().Uint64("dest", 0, "Destination chain id")
	sendCmd.Flags().String("message", "", "Message text to send")
}

// app bundles the wired components behind the commands.
type app struct {
	logger   *zap.Logger
	cfg      config.Config
	registry *registry.Registry
	pool     *clients.Pool
	sender   *workflow.Sender
	provider *wallet.NodeProvider
}

func buildApp(cmd *cobra.Command, registerer prometheus.Registerer) (*app, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("couldn't configure flags: %w", err)
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return nil, fmt.Errorf("couldn't build config: %w", err)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	reg := registry.NewDefault()
	overlays, err := cfg.ChainOverlays()
	if err != nil {
		return nil, err
	}
	if len(overlays) > 0 {
		if reg, err = reg.Merge(overlays...); err != nil {
			return nil, err
		}
	}

	// A wallet exists only when endpoints are configured; otherwise the
	// gateway reports no wallet and sends run in simulation mode.
	var provider *wallet.NodeProvider
	var gatewayProvider wallet.Provider
	endpoints, err := cfg.WalletEndpoints()
	if err != nil {
		return nil, err
	}
	if len(endpoints) > 0 {
		provider = wallet.NewNodeProvider(logger, endpoints)
		gatewayProvider = provider
	}
	gateway := wallet.NewGateway(logger, gatewayProvider, cfg.SettleDelay())

	pool := clients.NewPool(logger, clients.DefaultClientTTL)
	sender := workflow.NewSender(
		logger,
		reg,
		gateway,
		pool,
		dispatcher.New(logger, gateway, cfg.ConfirmTimeout(), dispatcher.GasPaymentConfig{
			Enabled:  cfg.GasPaymentEnabled,
			GasLimit: cfg.GasPaymentGasLimit,
		}),
		watcher.New(logger, watcher.Config{
			Attempts:       cfg.PollAttempts,
			Interval:       cfg.PollInterval(),
			LookbackBlocks: cfg.LookbackBlocks,
		}),
		simulate.New(logger, cfg.SimulationDelay()),
		history.NewLog(),
		workflow.NewMetrics(registerer),
	)

	return &app{
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		pool:     pool,
		sender:   sender,
		provider: provider,
	}, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("error reading log level from config: %w", err)
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(logLevel)
	return logCfg.Build()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the messenger HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer a.close()

		a.logger.Info("Initializing messenger",
			zap.String("version", version),
			zap.Int("chains", len(a.registry.List())),
		)

		api.RegisterHandlers(a.logger, a.sender, a.registry)
		api.HandleHealthCheckRequest(a.healthCheck)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Connect the wallet up front so API sends take the real dispatch
		// path. A failed connect leaves the service in simulation mode;
		// POST /v1/connect can retry it later.
		if a.provider != nil {
			if _, err := a.sender.Connect(ctx); err != nil {
				a.logger.Warn("Wallet connection failed, serving in simulation mode", zap.Error(err))
			}
		}

		errGroup, ctx := errgroup.WithContext(ctx)

		errGroup.Go(func() error {
			return metrics.Serve(a.logger, a.cfg.MetricsPort, prometheus.DefaultGatherer)
		})
		errGroup.Go(func() error {
			httpServer := &http.Server{
				Addr: fmt.Sprintf(":%d", a.cfg.APIPort),
			}
			go func() {
				<-ctx.Done()
				_ = httpServer.Shutdown(context.Background())
			}()
			a.logger.Info("API server listening", zap.Uint16("port", a.cfg.APIPort))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("API server: %w", err)
			}
			return nil
		})

		if err := errGroup.Wait(); err != nil {
			a.logger.Error("Exited with error", zap.Error(err))
			return err
		}
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one message and wait for delivery",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer a.close()

		source, _ := cmd.Flags().GetUint64("source")
		dest, _ := cmd.Flags().GetUint64("dest")
		message, _ := cmd.Flags().GetString("message")

		ctx := cmd.Context()
		if a.provider != nil {
			if addr, err := a.sender.Connect(ctx); err == nil {
				fmt.Printf("Connected: %s\n", addr)
			} else {
				a.logger.Warn("Wallet connection failed, falling back to simulation", zap.Error(err))
			}
		}

		outcome, err := a.sender.Send(ctx, source, dest, message)
		if outcome.Notice != nil {
			fmt.Printf("[%s] %s\n", outcome.Notice.Kind, outcome.Notice.Details)
		}
		fmt.Printf("Status: %s\n", outcome.Status.Message())
		if err != nil {
			return err
		}
		if record := outcome.Record; record != nil {
			fmt.Printf("Message ID:     %s\n", record.MessageID.Hex())
			fmt.Printf("Source tx:      %s\n", record.SourceTxHash.Hex())
			fmt.Printf("Destination tx: %s\n", record.DestinationTxHash.Hex())
		}
		return nil
	},
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the known chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer a.close()

		for _, c := range a.registry.List() {
			fmt.Printf("%-20s id=%-10d domain=%-10d mailbox=%s\n", c.Name, c.ID, c.Domain, c.Mailbox.Hex())
		}
		return nil
	},
}

// healthCheck probes the first reachable chain endpoint.
func (a *app) healthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, utils.DefaultRPCTimeout)
	defer cancel()
	var lastErr error
	for _, chain := range a.registry.List() {
		if chain.RPCURL == "" {
			continue
		}
		client, err := a.pool.ForChain(checkCtx, chain)
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := client.BlockNumber(checkCtx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no chain endpoints configured")
}

func (a *app) close() {
	a.pool.Close()
	if a.provider != nil {
		a.provider.Close()
	}
	_ = a.logger.Sync()
}
