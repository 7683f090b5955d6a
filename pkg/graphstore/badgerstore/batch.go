package badgerstore

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// IngestBatch ingests a pre-validated signal sequence inside a single
// write transaction (§4.3 "batch ingestion"): node/property writes for
// every signal, then an incremented edge for every adjacent pair within
// kremis.AssociationWindow, then one metadata write for next_node_id, then
// one commit. The in-memory entity cache is only updated after the commit
// succeeds, so a crash mid-batch leaves the database — and the cache,
// reconstructed at the next open — untouched.
//
// IngestBatch assumes signals have already passed validation (pkg/ingest
// does this before calling in); it does not re-validate attribute/value
// lengths or sequence length itself.
func (s *Store) IngestBatch(signals []kremis.Signal) ([]kremis.NodeId, error) {
	if len(signals) == 0 {
		return []kremis.NodeId{}, nil
	}

	nodeIDs := make([]kremis.NodeId, len(signals))
	localEntities := make(map[kremis.EntityId]kremis.NodeId)
	nextID := s.nextNodeID

	err := s.db.Update(func(txn *badger.Txn) error {
		resolve := func(entity kremis.EntityId) (kremis.NodeId, error) {
			if id, ok := localEntities[entity]; ok {
				return id, nil
			}
			item, err := txn.Get(entityIndexKey(entity))
			if err == nil {
				var id kremis.NodeId
				if valErr := item.Value(func(val []byte) error {
					id = kremis.NodeId(decodeUint64(val))
					return nil
				}); valErr != nil {
					return 0, valErr
				}
				localEntities[entity] = id
				return id, nil
			}
			if err != badger.ErrKeyNotFound {
				return 0, err
			}

			id := nextID
			nextID++
			if setErr := txn.Set(nodeKey(id), encodeUint64(uint64(entity))); setErr != nil {
				return 0, setErr
			}
			if setErr := txn.Set(entityIndexKey(entity), encodeUint64(uint64(id))); setErr != nil {
				return 0, setErr
			}
			localEntities[entity] = id
			return id, nil
		}

		appendProperty := func(node kremis.NodeId, attribute kremis.Attribute, value kremis.Value) error {
			key := propertyKey(node, attribute)
			var values []kremis.Value
			item, err := txn.Get(key)
			switch err {
			case nil:
				if valErr := item.Value(func(val []byte) error {
					decoded, decErr := decodeValues(val)
					if decErr != nil {
						return decErr
					}
					values = decoded
					return nil
				}); valErr != nil {
					return valErr
				}
			case badger.ErrKeyNotFound:
				values = nil
			default:
				return err
			}
			values = append(values, value)
			return txn.Set(key, encodeValues(values))
		}

		incrementEdge := func(from, to kremis.NodeId) error {
			key := edgeKey(from, to)
			var current kremis.EdgeWeight
			item, err := txn.Get(key)
			switch err {
			case nil:
				if valErr := item.Value(func(val []byte) error {
					current = kremis.EdgeWeight(decodeUint64(val))
					return nil
				}); valErr != nil {
					return valErr
				}
			case badger.ErrKeyNotFound:
				current = 0
			default:
				return err
			}
			return txn.Set(key, encodeUint64(uint64(current.SaturatingIncrement())))
		}

		for i, signal := range signals {
			id, err := resolve(signal.Entity)
			if err != nil {
				return err
			}
			nodeIDs[i] = id
			if err := appendProperty(id, signal.Attribute, signal.Value); err != nil {
				return err
			}
		}

		for i := 0; i+kremis.AssociationWindow < len(signals); i++ {
			for w := 0; w < kremis.AssociationWindow; w++ {
				from := nodeIDs[i+w]
				to := nodeIDs[i+kremis.AssociationWindow]
				if err := incrementEdge(from, to); err != nil {
					return err
				}
			}
		}

		if nextID != s.nextNodeID {
			if err := txn.Set(metadataKey(metaKeyNextNodeID), encodeUint64(uint64(nextID))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &kremis.IoError{Message: fmt.Sprintf("ingest batch: %v", err)}
	}

	s.nextNodeID = nextID
	for entity, id := range localEntities {
		s.entityCache[entity] = id
	}
	return nodeIDs, nil
}
