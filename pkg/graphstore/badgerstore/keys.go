package badgerstore

import (
	"encoding/binary"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// Key space layout. Badger has no native tables, so the five logical
// tables of §4.3 are five disjoint key prefixes within one keyspace:
// single-byte prefix plus fixed-width id, keeping every table's keys
// sortable and range-scannable on their own.
const (
	prefixNode        = byte(0x01) // nodes:    nodeID(8)              -> entity(8)
	prefixEdge        = byte(0x02) // edges:    from(8) + to(8)        -> weight(8)
	prefixEntityIndex = byte(0x03) // entities: entityID(8)            -> nodeID(8)
	prefixMetadata    = byte(0x04) // metadata: name                  -> u64(8)
	prefixProperty    = byte(0x05) // props:    nodeID(8) + attribute  -> ordered values
)

const metaKeyNextNodeID = "next_node_id"

func nodeKey(id kremis.NodeId) []byte {
	key := make([]byte, 9)
	key[0] = prefixNode
	binary.BigEndian.PutUint64(key[1:], uint64(id))
	return key
}

func nodeIDFromKey(key []byte) kremis.NodeId {
	return kremis.NodeId(binary.BigEndian.Uint64(key[1:9]))
}

func edgeKey(from, to kremis.NodeId) []byte {
	key := make([]byte, 17)
	key[0] = prefixEdge
	binary.BigEndian.PutUint64(key[1:9], uint64(from))
	binary.BigEndian.PutUint64(key[9:17], uint64(to))
	return key
}

func edgePrefix(from kremis.NodeId) []byte {
	key := make([]byte, 9)
	key[0] = prefixEdge
	binary.BigEndian.PutUint64(key[1:], uint64(from))
	return key
}

func edgeEndpointsFromKey(key []byte) (from, to kremis.NodeId) {
	return kremis.NodeId(binary.BigEndian.Uint64(key[1:9])), kremis.NodeId(binary.BigEndian.Uint64(key[9:17]))
}

func entityIndexKey(entity kremis.EntityId) []byte {
	key := make([]byte, 9)
	key[0] = prefixEntityIndex
	binary.BigEndian.PutUint64(key[1:], uint64(entity))
	return key
}

func entityIDFromKey(key []byte) kremis.EntityId {
	return kremis.EntityId(binary.BigEndian.Uint64(key[1:9]))
}

func metadataKey(name string) []byte {
	key := make([]byte, 1+len(name))
	key[0] = prefixMetadata
	copy(key[1:], name)
	return key
}

// propertyKey uses a direct compound key (node_id, attribute bytes) rather
// than a hashed attribute qualifier, per the design-notes recommendation
// in §9 ("if the target store supports compound keys with variable-length
// string suffixes natively, prefer those over a secondary attribute-hash
// key"); Badger's keys are arbitrary byte slices, so it does. This removes
// the hash-collision caveat in §4.3 entirely — the attribute is the key,
// not a qualifier alongside it.
func propertyKey(node kremis.NodeId, attribute kremis.Attribute) []byte {
	key := make([]byte, 9+len(attribute))
	key[0] = prefixProperty
	binary.BigEndian.PutUint64(key[1:9], uint64(node))
	copy(key[9:], attribute)
	return key
}

func propertyPrefix(node kremis.NodeId) []byte {
	key := make([]byte, 9)
	key[0] = prefixProperty
	binary.BigEndian.PutUint64(key[1:], uint64(node))
	return key
}

func attributeFromPropertyKey(key []byte) kremis.Attribute {
	return kremis.Attribute(key[9:])
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// encodeValues and decodeValues serialize the ordered list of values
// stored under one (node, attribute) property key: a u32 count followed
// by length-prefixed UTF-8 strings, preserving insertion order.
func encodeValues(values []kremis.Value) []byte {
	total := 4
	for _, v := range values {
		total += 4 + len(v)
	}
	buf := make([]byte, total)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(values)))
	offset := 4
	for _, v := range values {
		binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(v)))
		offset += 4
		copy(buf[offset:], v)
		offset += len(v)
	}
	return buf
}

func decodeValues(data []byte) ([]kremis.Value, error) {
	if len(data) < 4 {
		return nil, &kremis.DeserializationError{Message: "truncated property value"}
	}
	count := binary.BigEndian.Uint32(data[0:4])
	offset := 4
	values := make([]kremis.Value, 0, count)
	for i := uint32(0); i < count; i++ {
		if offset+4 > len(data) {
			return nil, &kremis.DeserializationError{Message: "truncated property value length"}
		}
		length := binary.BigEndian.Uint32(data[offset : offset+4])
		offset += 4
		if offset+int(length) > len(data) {
			return nil, &kremis.DeserializationError{Message: "truncated property value bytes"}
		}
		values = append(values, kremis.Value(data[offset:offset+int(length)]))
		offset += int(length)
	}
	return values, nil
}
