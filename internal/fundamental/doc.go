// Package fundamental implements the audit track for fundamental fact
// records: tier-based conflict resolution, unit normalization, smoothing,
// algebraic self-healing of the accounting identity
// Assets = Liabilities + Equity, and the statistical priors (Benford
// leading-digit distribution, MAD outlier scoring) that feed the hub's
// quality score.
//
// Every transformation is exposed as a columnar.StepFunc so the hub can
// queue it on the fundamental plan; nothing here executes eagerly.
package fundamental
