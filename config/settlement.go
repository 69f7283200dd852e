package config

import "time"

const (
	// DefaultRewardPerTick is the credit for one recorded tick, in the
	// smallest unit of the payment rail (lamports on solana).
	DefaultRewardPerTick = 100

	defaultRailTimeout       = 30 * time.Second
	defaultGracePeriod       = time.Hour
	defaultReconcileInterval = time.Minute
	defaultReconcileWorkers  = 4
	defaultDisplayDecimals   = 9
)

// Settlement holds the reward and payout policy shared by ingestion and the
// settlement engine.
type Settlement struct {
	RewardPerTick uint64 `yaml:"reward_per_tick"`
	// RailTimeout bounds a single transfer call.
	RailTimeout time.Duration `yaml:"rail_timeout"`
	// ReconcileDelay is the minimum age of a live intent before the
	// reconciler looks at it.
	ReconcileDelay time.Duration `yaml:"reconcile_delay"`
	// GracePeriod is how long a submitted intent without a matching
	// transfer is kept before it is marked failed.
	GracePeriod       time.Duration `yaml:"grace_period"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	ReconcileWorkers  int           `yaml:"reconcile_workers"`
	// AutoSettleInterval enables the payout scheduler when non zero.
	AutoSettleInterval time.Duration `yaml:"auto_settle_interval"`
	MinPayout          uint64        `yaml:"min_payout"`
	DisplayDecimals    int32         `yaml:"display_decimals"`
}

// SetDefaults fills the zero fields.
func (s *Settlement) SetDefaults() {
	if s.RewardPerTick == 0 {
		s.RewardPerTick = DefaultRewardPerTick
	}
	if s.RailTimeout == 0 {
		s.RailTimeout = defaultRailTimeout
	}
	if s.ReconcileDelay == 0 {
		s.ReconcileDelay = 2 * s.RailTimeout
	}
	if s.GracePeriod == 0 {
		s.GracePeriod = defaultGracePeriod
	}
	if s.ReconcileInterval == 0 {
		s.ReconcileInterval = defaultReconcileInterval
	}
	if s.ReconcileWorkers <= 0 {
		s.ReconcileWorkers = defaultReconcileWorkers
	}
	if s.MinPayout == 0 {
		s.MinPayout = 1
	}
	if s.DisplayDecimals == 0 {
		s.DisplayDecimals = defaultDisplayDecimals
	}
}

// DefaultSettlement returns the policy with every default applied.
func DefaultSettlement() Settlement {
	s := Settlement{}
	s.SetDefaults()
	return s
}
