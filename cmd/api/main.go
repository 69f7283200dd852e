package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/api/server"
	"github.com/varunguleriaCodes/DeWebStatus/api/service"
	"github.com/varunguleriaCodes/DeWebStatus/chain"
	"github.com/varunguleriaCodes/DeWebStatus/cmd"
	"github.com/varunguleriaCodes/DeWebStatus/cmd/runtime/version"
	"github.com/varunguleriaCodes/DeWebStatus/config"
	"github.com/varunguleriaCodes/DeWebStatus/database/mysql"
	"github.com/varunguleriaCodes/DeWebStatus/ingest"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/metrics"
	"github.com/varunguleriaCodes/DeWebStatus/rail"
	"github.com/varunguleriaCodes/DeWebStatus/rail/memrail"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := cli.App{
		Name:    "dewebstatus-hub",
		Usage:   "tick ingestion and validator payout hub of DeWebStatus",
		Action:  exec,
		Version: version.Get(),
		Flags:   append([]cli.Flag{cmd.ConfigPathFlag}, cmd.LogFlags...),
		Before:  cmd.ConfigureLogging,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running api application failed", "error", err)
		os.Exit(1)
	}
}

func exec(ctx *cli.Context) error {
	cfg := &Config{}
	if err := config.Load(ctx.String(cmd.ConfigPathFlag.Name), cfg); err != nil {
		log.Fatal("reading api config failed", "error", err)
	}

	db, err := mysql.NewMySQLDB(cfg.MySQL)
	if err != nil {
		log.Fatal("initialize mysql db error", "error", err)
	}

	payments, err := newRail(cfg.Rail)
	if err != nil {
		log.Fatal("initialize payment rail error", "error", err)
	}

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	store := ledger.NewStore(db, cfg.Settlement.RewardPerTick)
	engine := settlement.NewEngine(store, payments, cfg.Settlement, m)

	runCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()

	reconciler := settlement.NewReconciler(runCtx, engine)
	go reconciler.Run()

	var scheduler *settlement.Scheduler
	if cfg.Settlement.AutoSettleInterval > 0 {
		scheduler = settlement.NewScheduler(runCtx, engine)
		go scheduler.Run()
	}

	srv := server.New(
		cfg.Port,
		service.New(store, ingest.New(store, m), engine, cfg.Settlement.DisplayDecimals),
		prometheus.DefaultGatherer,
	)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		log.Info("Got interrupt, shutting down...")

		go func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("shutdown api server failed", "error", err)
			}
		}()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				log.Info("Already shutting down, interrupt more to panic", "times", i-1)
			}
		}
		panic("Panic closing the api service")
	}()

	if err := srv.Run(); err != nil {
		return err
	}

	if scheduler != nil {
		scheduler.Stop()
	}
	reconciler.Stop()
	engine.Close()
	log.Info("api service stopped")
	return nil
}

func newRail(cfg RailConfig) (rail.PaymentRail, error) {
	switch cfg.Mode {
	case railModeGateway:
		if cfg.Endpoint == "" {
			return nil, errors.New("missing rail endpoint")
		}
		return chain.NewGatewayClient(cfg.Endpoint, cfg.APIKey), nil

	case railModeMemory:
		log.Info("using in-memory payment rail, payouts are not real")
		return memrail.New(), nil

	default:
		return nil, errors.Errorf("unknown rail mode %q", cfg.Mode)
	}
}

const (
	railModeGateway = "gateway"
	railModeMemory  = "memory"
)

// Config defines the config for api service.
type Config struct {
	Port             int               `yaml:"port"`
	MySQL            mysql.Config      `yaml:"mysql"`
	Rail             RailConfig        `yaml:"rail"`
	Settlement       config.Settlement `yaml:"settlement"`
	MetricsNamespace string            `yaml:"metrics_namespace"`
}

// RailConfig selects the payment rail.
type RailConfig struct {
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// SetDefaults fills the zero fields.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Rail.Mode == "" {
		c.Rail.Mode = railModeGateway
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = "dewebstatus_hub"
	}
	c.Settlement.SetDefaults()
}
