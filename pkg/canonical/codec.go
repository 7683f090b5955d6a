// Package canonical implements the deterministic, checksummed export/import
// format of §4.6: a length-prefixed header followed by a sorted, flattened
// body. The encoding is a postcard-like fixed-width/length-prefixed scheme
// chosen for determinism, not for compactness — see DESIGN.md for why no
// pack library covers this (the format's byte layout is itself part of the
// contract, which rules out a generic schema-driven encoder).
package canonical

import (
	"encoding/binary"

	"github.com/TyKolt/kremis/pkg/kremis"
)

// magic identifies a canonical stream. §4.6 specifies this literally as
// "KREX"; it is unrelated to the Rust original's internal on-disk format
// tag ("KREM"), which this package does not reproduce — see DESIGN.md.
var magic = [4]byte{'K', 'R', 'E', 'X'}

const (
	currentVersion = 2
	legacyVersion  = 1

	headerSize = 4 + 1 + 8 + 8 + 8 // magic + version + node_count + edge_count + checksum
)

// Header is the fixed-size, fixed-order §4.6 header.
type Header struct {
	Version   uint8
	NodeCount uint64
	EdgeCount uint64
	Checksum  uint64
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	buf[4] = h.Version
	binary.LittleEndian.PutUint64(buf[5:13], h.NodeCount)
	binary.LittleEndian.PutUint64(buf[13:21], h.EdgeCount)
	binary.LittleEndian.PutUint64(buf[21:29], h.Checksum)
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) != headerSize {
		return Header{}, &kremis.SerializationError{Message: "malformed header"}
	}
	if buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return Header{}, &kremis.SerializationError{Message: "unrecognized stream"}
	}
	version := buf[4]
	if version != currentVersion && version != legacyVersion {
		return Header{}, &kremis.SerializationError{Message: "unsupported version"}
	}
	return Header{
		Version:   version,
		NodeCount: binary.LittleEndian.Uint64(buf[5:13]),
		EdgeCount: binary.LittleEndian.Uint64(buf[13:21]),
		Checksum:  binary.LittleEndian.Uint64(buf[21:29]),
	}, nil
}

func putUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func putInt64(dst []byte, v int64) []byte {
	return putUint64(dst, uint64(v))
}

func putString(dst []byte, s string) []byte {
	dst = putUint64(dst, uint64(len(s)))
	return append(dst, s...)
}

// reader walks a byte slice left to right, erroring out (rather than
// panicking) on truncation. Every Export/Import defect that reaches a
// caller surfaces as a SerializationError, never an index-out-of-range.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) readUint64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, &kremis.SerializationError{Message: "truncated body"}
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *reader) readString() (string, error) {
	n, err := r.readUint64()
	if err != nil {
		return "", err
	}
	// n is attacker-controlled at this point (body bytes not yet trusted);
	// bound it against what could possibly remain rather than allocating
	// n bytes up front.
	if n > uint64(r.remaining()) {
		return "", &kremis.SerializationError{Message: "truncated body"}
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func encodeBody(g Graph, includeProperties bool) []byte {
	nodes := sortedNodes(g.Nodes)
	edges := sortedEdges(g.Edges)

	buf := make([]byte, 0, headerSize+len(nodes)*16+len(edges)*24+32)
	buf = putUint64(buf, uint64(len(nodes)))
	for _, n := range nodes {
		buf = putUint64(buf, uint64(n.ID))
		buf = putUint64(buf, uint64(n.Entity))
	}
	buf = putUint64(buf, uint64(len(edges)))
	for _, e := range edges {
		buf = putUint64(buf, uint64(e.From))
		buf = putUint64(buf, uint64(e.To))
		buf = putInt64(buf, int64(e.Weight))
	}
	buf = putUint64(buf, uint64(g.NextNodeID))

	if includeProperties {
		props := sortedProperties(g.Properties)
		buf = putUint64(buf, uint64(len(props)))
		for _, p := range props {
			buf = putUint64(buf, uint64(p.Node))
			buf = putString(buf, string(p.Attribute))
			buf = putString(buf, string(p.Value))
		}
	}
	return buf
}

func decodeBody(buf []byte, version uint8, nodeCount, edgeCount uint64) (Graph, error) {
	r := &reader{buf: buf}

	declaredNodes, err := r.readUint64()
	if err != nil || declaredNodes != nodeCount {
		return Graph{}, &kremis.SerializationError{Message: "node count mismatch"}
	}
	nodes := make([]kremis.Node, 0, declaredNodes)
	for i := uint64(0); i < declaredNodes; i++ {
		id, err := r.readUint64()
		if err != nil {
			return Graph{}, err
		}
		entity, err := r.readUint64()
		if err != nil {
			return Graph{}, err
		}
		nodes = append(nodes, kremis.Node{ID: kremis.NodeId(id), Entity: kremis.EntityId(entity)})
	}

	declaredEdges, err := r.readUint64()
	if err != nil || declaredEdges != edgeCount {
		return Graph{}, &kremis.SerializationError{Message: "edge count mismatch"}
	}
	edges := make([]kremis.Edge, 0, declaredEdges)
	for i := uint64(0); i < declaredEdges; i++ {
		from, err := r.readUint64()
		if err != nil {
			return Graph{}, err
		}
		to, err := r.readUint64()
		if err != nil {
			return Graph{}, err
		}
		weight, err := r.readInt64()
		if err != nil {
			return Graph{}, err
		}
		edges = append(edges, kremis.Edge{From: kremis.NodeId(from), To: kremis.NodeId(to), Weight: kremis.EdgeWeight(weight)})
	}

	nextID, err := r.readUint64()
	if err != nil {
		return Graph{}, err
	}

	g := Graph{Nodes: nodes, Edges: edges, NextNodeID: kremis.NodeId(nextID)}

	if version == legacyVersion {
		return g, nil
	}

	propCount, err := r.readUint64()
	if err != nil {
		return Graph{}, err
	}
	props := make([]PropertyRecord, 0, propCount)
	for i := uint64(0); i < propCount; i++ {
		node, err := r.readUint64()
		if err != nil {
			return Graph{}, err
		}
		attr, err := r.readString()
		if err != nil {
			return Graph{}, err
		}
		val, err := r.readString()
		if err != nil {
			return Graph{}, err
		}
		props = append(props, PropertyRecord{Node: kremis.NodeId(node), Attribute: kremis.Attribute(attr), Value: kremis.Value(val)})
	}
	g.Properties = props
	return g, nil
}

// Export serializes g into the §4.6 canonical stream: a 4-byte
// little-endian header length, the header, then the sorted v2 body.
func Export(g Graph) []byte {
	body := encodeBody(g, true)
	header := Header{
		Version:   currentVersion,
		NodeCount: uint64(len(g.Nodes)),
		EdgeCount: uint64(len(g.Edges)),
		Checksum:  checksum(g, true),
	}
	headerBytes := encodeHeader(header)

	out := make([]byte, 0, 4+len(headerBytes)+len(body))
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(headerBytes)))
	out = append(out, lenBuf[:]...)
	out = append(out, headerBytes...)
	out = append(out, body...)
	return out
}

// Import parses a §4.6 canonical stream back into a Graph. Any corruption —
// bad magic, unsupported version, truncated body, size-limit violation, or
// checksum mismatch — returns a SerializationError with a generic message
// (§7: these messages are surfaced to untrusted callers).
func Import(stream []byte) (Graph, error) {
	if len(stream) < 4 {
		return Graph{}, &kremis.SerializationError{Message: "truncated stream"}
	}
	headerLen := binary.LittleEndian.Uint32(stream[0:4])
	if uint64(headerLen) != uint64(headerSize) {
		return Graph{}, &kremis.SerializationError{Message: "malformed header length"}
	}
	if len(stream) < 4+int(headerLen) {
		return Graph{}, &kremis.SerializationError{Message: "truncated header"}
	}

	header, err := decodeHeader(stream[4 : 4+headerLen])
	if err != nil {
		return Graph{}, err
	}

	if header.NodeCount > kremis.MaxImportNodeCount {
		return Graph{}, &kremis.SerializationError{Message: "node count exceeds limit"}
	}
	if header.EdgeCount > kremis.MaxImportEdgeCount {
		return Graph{}, &kremis.SerializationError{Message: "edge count exceeds limit"}
	}

	bodyBytes := stream[4+headerLen:]
	g, err := decodeBody(bodyBytes, header.Version, header.NodeCount, header.EdgeCount)
	if err != nil {
		return Graph{}, err
	}

	includeProperties := header.Version == currentVersion
	if checksum(g, includeProperties) != header.Checksum {
		return Graph{}, &kremis.SerializationError{Message: "checksum mismatch"}
	}

	return g, nil
}
