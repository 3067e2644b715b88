// Package market implements the feature track for market event records:
// tick sanitization, information-driven (dollar) bar resampling,
// microstructure signals, windowed alpha features, strategy signals,
// triple-barrier and meta labeling, execution-cost-aware scoring, and
// volatility-regime auto-tuning.
//
// The stages are columnar.StepFuncs applied strictly in the order the hub
// queues them; each stage consumes the frame the previous stage produced.
// Stages that need columns the input lacks are silent no-ops: missing
// microstructure data is a data gap, not an error.
package market
