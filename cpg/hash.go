package cpg

import (
	"fmt"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed 32-byte HighwayHash key. The core only uses the hash
// as a stable fingerprint for dedup/snapshot purposes, never as a security
// boundary, so a fixed key (as in the grounding example) is sufficient.
var hashKey = []byte("jimple2cpg-content-hash-key-0000")

// ContentHash fingerprints the fields of a node that determine its
// identity within a single lowering (everything but the backend-assigned
// ID), so two independent lowerings of the same method produce identical
// hashes node-for-node.
func ContentHash(n *Node) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		// hashKey is a fixed, correctly-sized constant; New64 only fails
		// on key length, so this is unreachable in practice.
		return 0
	}
	fmt.Fprintf(h, "%s|%d|%d|%s|%s|%s|%d|%d|%s|%s|%s|%s|%s",
		n.Label, n.Order, n.ArgumentIndex, n.Code, n.Name, n.TypeFullName,
		n.Line, n.Column, n.MethodFullName, n.Signature, n.DispatchType,
		n.ControlStructureType, n.EvaluationStrategy)
	return h.Sum64()
}
