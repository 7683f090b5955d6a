// Package ingest implements the ingestion protocol (§4.4): signal
// validation, node creation/deduplication, property append, and
// adjacent-signal edge increment. It is written against graphstore.Store
// so it works unmodified against either backend; when the backend also
// implements graphstore.BatchIngester, sequence ingestion routes through
// the backend's single-transaction batch path instead of looping.
package ingest

import (
	"github.com/TyKolt/kremis/pkg/graphstore"
	"github.com/TyKolt/kremis/pkg/kremis"
)

// Validate checks a signal against the bounds in §4.4. No partial effect
// occurs on failure — Validate never mutates a store.
func Validate(signal kremis.Signal) error {
	attrLen := len(signal.Attribute)
	if attrLen < 1 || attrLen > kremis.MaxAttributeLength {
		return kremis.ErrInvalidSignal
	}
	valLen := len(signal.Value)
	if valLen < 1 || valLen > kremis.MaxValueLength {
		return kremis.ErrInvalidSignal
	}
	return nil
}

// Signal validates and ingests a single signal: get-or-create the
// entity's node, append its (attribute, value) as a property, and return
// the NodeId.
func Signal(store graphstore.Store, signal kremis.Signal) (kremis.NodeId, error) {
	if err := Validate(signal); err != nil {
		return 0, err
	}
	id, err := store.InsertNode(signal.Entity)
	if err != nil {
		return 0, err
	}
	if err := store.StoreProperty(id, signal.Attribute, signal.Value); err != nil {
		return 0, err
	}
	return id, nil
}

// Sequence validates and ingests an ordered signal sequence (§4.4):
// every signal is validated up front (a single invalid signal rejects the
// whole batch with no partial effect), each signal's node is created or
// deduplicated by entity, and the edge between each adjacent pair —
// AssociationWindow apart — is incremented by 1 with saturation.
func Sequence(store graphstore.Store, signals []kremis.Signal) ([]kremis.NodeId, error) {
	if len(signals) == 0 {
		return []kremis.NodeId{}, nil
	}
	if len(signals) > kremis.MaxSequenceLength {
		return nil, kremis.ErrInvalidSignal
	}
	for _, s := range signals {
		if err := Validate(s); err != nil {
			return nil, err
		}
	}

	if batch, ok := store.(graphstore.BatchIngester); ok {
		return batch.IngestBatch(signals)
	}

	nodeIDs := make([]kremis.NodeId, len(signals))
	for i, s := range signals {
		id, err := store.InsertNode(s.Entity)
		if err != nil {
			return nil, err
		}
		if err := store.StoreProperty(id, s.Attribute, s.Value); err != nil {
			return nil, err
		}
		nodeIDs[i] = id
	}

	for i := 0; i+kremis.AssociationWindow < len(signals); i++ {
		for w := 0; w < kremis.AssociationWindow; w++ {
			from := nodeIDs[i+w]
			to := nodeIDs[i+kremis.AssociationWindow]
			if err := store.IncrementEdge(from, to); err != nil {
				return nil, err
			}
		}
	}

	return nodeIDs, nil
}

// Retract decrements the weight of an existing edge by 1, floored at 0.
// Returns an EdgeNotFoundError if the edge does not exist. The edge
// record is never removed (§4.4).
func Retract(store graphstore.Store, from, to kremis.NodeId) error {
	return store.DecrementEdge(from, to)
}
