package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Digest domains. The version suffix leaves room for changing what is hashed.
const (
	DomainSolution = "frontier/solution/v1"
)

// Digest hashes the canonical form of v with domain separation:
// SHA256(domain || 0x00 || canonical(v)), hex encoded.
func Digest(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", domain, err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SolutionDigest identifies a visited solution by the worker that produced it
// and its machine-to-factory assignment. Objective values are derived from the
// permutation and are left out.
func SolutionDigest(workerID string, permutation [][]int) (string, error) {
	if permutation == nil {
		permutation = [][]int{}
	}
	return Digest(DomainSolution, map[string]any{
		"permutation": permutation,
		"worker_id":   workerID,
	})
}
