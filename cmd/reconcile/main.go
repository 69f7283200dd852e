package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/chain"
	"github.com/varunguleriaCodes/DeWebStatus/cmd"
	"github.com/varunguleriaCodes/DeWebStatus/cmd/runtime/version"
	"github.com/varunguleriaCodes/DeWebStatus/config"
	"github.com/varunguleriaCodes/DeWebStatus/database/mysql"
	"github.com/varunguleriaCodes/DeWebStatus/ledger"
	"github.com/varunguleriaCodes/DeWebStatus/metrics"
	"github.com/varunguleriaCodes/DeWebStatus/settlement"
)

func main() {
	app := cli.App{
		Name:    "dewebstatus-reconcile",
		Usage:   "resolves settlement intents left live by a crashed or partitioned hub",
		Action:  exec,
		Version: version.Get(),
		Flags:   append([]cli.Flag{cmd.ConfigPathFlag}, cmd.LogFlags...),
		Before:  cmd.ConfigureLogging,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running reconcile application failed", "error", err)
		os.Exit(1)
	}
}

func exec(ctx *cli.Context) error {
	cfg := &Config{}
	if err := config.Load(ctx.String(cmd.ConfigPathFlag.Name), cfg); err != nil {
		log.Fatal("fail on read config", "error", err)
	}

	db, err := mysql.NewMySQLDB(cfg.MySQL)
	if err != nil {
		log.Fatal("initialize mysql db error", "error", err)
	}

	store := ledger.NewStore(db, cfg.Settlement.RewardPerTick)
	engine := settlement.NewEngine(
		store,
		chain.NewGatewayClient(cfg.RailEndpoint, cfg.RailAPIKey),
		cfg.Settlement,
		metrics.NewMetrics("dewebstatus_reconcile", prometheus.NewRegistry()),
	)
	defer engine.Close()

	report, err := engine.Reconcile(ctx.Context)
	if report != nil {
		log.Info("reconciliation finished",
			"scanned", report.Scanned,
			"confirmed", report.Confirmed,
			"failed", report.Failed,
			"unverified", report.Unverified,
			"pending", report.Pending,
		)
	}

	return err
}

// Config defines the config for the reconcile tool.
type Config struct {
	MySQL        mysql.Config      `yaml:"mysql"`
	RailEndpoint string            `yaml:"rail_endpoint"`
	RailAPIKey   string            `yaml:"rail_api_key"`
	Settlement   config.Settlement `yaml:"settlement"`
}

// SetDefaults fills the zero fields.
func (c *Config) SetDefaults() {
	c.Settlement.SetDefaults()
}
