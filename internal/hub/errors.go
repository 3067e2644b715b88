package hub

import "errors"

var (
	// ErrUnknownDomain rejects ingest calls with a domain tag outside
	// {fundamental, market}.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrEmptyBatch rejects ingest calls carrying no records.
	ErrEmptyBatch = errors.New("empty batch")

	// ErrNotMaterialized is returned by Table before the first successful
	// (or recovered) Run.
	ErrNotMaterialized = errors.New("domain not materialized; call Run first")
)
