package graphstore

import "github.com/TyKolt/kremis/pkg/kremis"

// BatchIngester is implemented by backends that can ingest a whole,
// pre-validated signal sequence inside one atomic transaction (§4.3:
// "a dedicated path ... opens one write transaction, performs all
// node/property/edge writes, updates the next_node_id metadata entry
// once, commits, and only then updates the in-memory entity cache").
// pkg/ingest uses this when the backend implements it, and falls back to
// a plain per-signal loop (adequate for the in-memory backend, which has
// no per-call I/O cost to amortize) otherwise.
type BatchIngester interface {
	IngestBatch(signals []kremis.Signal) ([]kremis.NodeId, error)
}
