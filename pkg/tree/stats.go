package tree

import "sort"

// Practical size assumptions for interactive rendering. Exceeding them does
// not stop the engine; it only flags the stats so callers can warn the user
// or cap depth and breadth themselves.
const (
	// MaxPracticalNodes is the node count above which layout passes stop
	// being comfortably interactive.
	MaxPracticalNodes = 500

	// MaxPracticalDepth is the nesting depth above which horizontal spread
	// becomes unwieldy.
	MaxPracticalDepth = 16
)

// LevelStat describes one depth level of the tree.
type LevelStat struct {
	Level int      `json:"level" bson:"level"`
	Count int      `json:"count" bson:"count"`
	Names []string `json:"names" bson:"names"`
}

// Stats aggregates structural information about one generation. Counts cover
// the full structure, including children hidden by a collapse.
type Stats struct {
	TotalNodes    int         `json:"total_nodes" bson:"total_nodes"`
	TotalEdges    int         `json:"total_edges" bson:"total_edges"`
	MaxDepth      int         `json:"max_depth" bson:"max_depth"`
	NodesPerLevel []LevelStat `json:"nodes_per_level" bson:"nodes_per_level"`
}

// Overflow reports whether the tree exceeds the practical size or depth
// assumptions of the interactive engine.
func (s Stats) Overflow() bool {
	return s.TotalNodes > MaxPracticalNodes || s.MaxDepth > MaxPracticalDepth
}

// ComputeStats derives aggregate stats for the tree. MaxDepth is the maximum
// root-to-leaf edge count; an empty tree reports all zeros.
func ComputeStats(t *Tree) Stats {
	if t.IsEmpty() {
		return Stats{}
	}

	s := Stats{
		TotalNodes: len(t.Nodes),
		TotalEdges: len(t.Edges),
	}

	levels := make([]int, 0, len(t.Levels))
	for level := range t.Levels {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	for _, level := range levels {
		nodes := t.Levels[level]
		names := make([]string, len(nodes))
		for i, n := range nodes {
			names[i] = n.Name
		}
		s.NodesPerLevel = append(s.NodesPerLevel, LevelStat{
			Level: level,
			Count: len(nodes),
			Names: names,
		})
		if level > s.MaxDepth {
			s.MaxDepth = level
		}
	}

	return s
}
