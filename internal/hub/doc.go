// Package hub wires the fusion pipeline together: schema-tolerant ingestion
// into per-domain deferred plans, the audited fundamental track and the
// feature-engineered market track, multiplicative quality scoring, and
// checkpoint-based crash recovery around the single forcing entry point Run.
//
// One Hub instance owns one logical pipeline: its own schema registry,
// plans, quality score and checkpoint namespace. Hubs are not safe to share
// a checkpoint directory; callers namespace per instance.
package hub
