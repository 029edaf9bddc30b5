package detect

import (
	"sort"

	"github.com/google/uuid"
)

// ClusterDuplicates filters merged candidates by confidence, builds an
// undirected graph over the surviving pairs, and returns its connected
// components as duplicate groups.
//
// Group membership is the transitive closure of pairwise evidence: a
// chain A-B, B-C places A, B and C in one group even without a direct
// A-C edge. A borderline "bridge" record can therefore pull otherwise
// unrelated products together; callers concerned about this should
// raise minConfidence.
//
// minConfidence <= 0 falls back to the configured default. SKUs with no
// surviving edge produce no group.
func (d *Detector) ClusterDuplicates(merged []MergedCandidate, minConfidence float64) []Group {
	if minConfidence <= 0 {
		minConfidence = d.cfg.MinConfidence
	}

	adjacency := make(map[string]map[string]bool)
	link := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]bool)
		}
		adjacency[a][b] = true
	}

	for _, m := range merged {
		if m.Confidence < minConfidence {
			continue
		}
		link(m.SKU1, m.SKU2)
		link(m.SKU2, m.SKU1)
	}

	// Iterate nodes in sorted order so group discovery is deterministic
	nodes := make([]string, 0, len(adjacency))
	for sku := range adjacency {
		nodes = append(nodes, sku)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool)
	var groups []Group

	for _, start := range nodes {
		if visited[start] {
			continue
		}

		// Iterative BFS; recursion depth is unbounded on long chains
		var members []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			members = append(members, node)
			for neighbor := range adjacency[node] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}

		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		groups = append(groups, Group{
			ID:   uuid.New().String(),
			SKUs: members,
		})
	}

	d.logger.Debug("clustering complete",
		"pairs", len(merged),
		"minConfidence", minConfidence,
		"groups", len(groups),
	)
	return groups
}
