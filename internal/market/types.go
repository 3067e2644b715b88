package market

// Fixed parameters of the feature track. Heuristic constants carried from
// the calibrated production values, not derived at runtime.
const (
	// DefaultDollarBarThreshold is the cumulative traded value, in currency
	// units, that closes one dollar bar.
	DefaultDollarBarThreshold = 1_000_000.0

	// DefaultWindow is the rolling window, in bars, shared by the volume
	// mean, moving-average divergence, z-score and VPIN features.
	DefaultWindow = 20

	// FracDiffWeight is the single-lag fractional differentiation weight:
	// frac_diff = close - FracDiffWeight * close[-1].
	FracDiffWeight = 0.4

	// AlphaZThreshold and VPINThreshold gate the strategy signal.
	AlphaZThreshold = 2.0
	VPINThreshold   = 0.6

	// BarrierHorizon is the forward look, in bars, for triple-barrier and
	// meta labeling.
	BarrierHorizon = 5

	// HighVolThreshold classifies a bar's volatility regime;
	// HighVolBarrierMultiplier widens the barriers under High_Vol.
	HighVolThreshold         = 0.04
	HighVolBarrierMultiplier = 1.5

	// ImpactCoefficient and BaselineVolume parameterize the square-root
	// market impact model behind the execution-cost-aware score.
	ImpactCoefficient = 0.1
	BaselineVolume    = 10_000.0
)

// Derived column names.
const (
	ColBarID       = "bar_id"
	ColLogReturn   = "log_return"
	ColOFI         = "order_flow_imbalance"
	ColDailyReturn = "daily_return"
	ColVolumeMean  = "volume_mean"
	ColMADiv       = "ma_divergence"
	ColFracDiff    = "frac_diff"
	ColAlphaZ      = "alpha_z_score"
	ColSignedFlow  = "signed_flow"
	ColVPIN        = "vpin"
	ColSignal      = "signal"
	ColVolatility  = "volatility"
	ColBarrier     = "barrier_label"
	ColMetaLabel   = "meta_label"
	ColImpactCost  = "impact_cost"
	ColNetAlpha    = "net_alpha"
	ColRegime      = "regime"
)

// Strategy signal labels.
const (
	SignalStrongBuy  = "Strong_Buy"
	SignalStrongSell = "Strong_Sell"
	SignalHold       = "Hold"
)

// Volatility regimes.
const (
	RegimeHighVol   = "High_Vol"
	RegimeNormalVol = "Normal_Vol"
)
