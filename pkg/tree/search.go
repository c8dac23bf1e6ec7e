package tree

import "strings"

// MatchType identifies which part of a node a search term matched.
type MatchType string

const (
	// MatchName means the term matched the node's display label.
	MatchName MatchType = "name"
	// MatchProperty means the term matched a property key or value.
	MatchProperty MatchType = "property"
)

// Match is one search hit. At most one match is recorded per node: the name
// is checked first, then properties in order, stopping at the first hit.
type Match struct {
	NodeID int       `json:"node_id" bson:"node_id"`
	Type   MatchType `json:"type" bson:"type"`
	Text   string    `json:"text" bson:"text"`
}

// Index is a finite, restartable, ordered sequence of search matches with
// circular navigation. Build a fresh index whenever the search term changes;
// the current position always starts at 0.
type Index struct {
	term    string
	matches []Match
	current int
}

// NewIndex scans the tree for case-insensitive substring matches of term.
// When includeHidden is true the scan covers nodes held back by collapses;
// otherwise only currently visible nodes are examined. An empty term yields
// an index with no matches.
func NewIndex(t *Tree, term string, includeHidden bool) *Index {
	idx := &Index{term: term}
	if t.IsEmpty() || strings.TrimSpace(term) == "" {
		return idx
	}

	needle := strings.ToLower(term)
	visit := func(n *Node) bool {
		if m, ok := matchNode(n, needle); ok {
			idx.matches = append(idx.matches, m)
		}
		return true
	}

	if includeHidden {
		t.Root.Walk(visit)
	} else {
		t.Root.WalkVisible(visit)
	}
	return idx
}

// matchNode checks name first, then property keys and values in order.
func matchNode(n *Node, needle string) (Match, bool) {
	if strings.Contains(strings.ToLower(n.Name), needle) {
		return Match{NodeID: n.ID, Type: MatchName, Text: n.Name}, true
	}
	for _, p := range n.Properties {
		if strings.Contains(strings.ToLower(p.Key), needle) || strings.Contains(strings.ToLower(p.Value), needle) {
			return Match{NodeID: n.ID, Type: MatchProperty, Text: p.Key + ": " + p.Value}, true
		}
	}
	return Match{}, false
}

// Term returns the search term the index was built for.
func (i *Index) Term() string { return i.term }

// Matches returns the ordered match list. The returned slice is shared;
// treat it as read-only.
func (i *Index) Matches() []Match { return i.matches }

// Len returns the number of matches.
func (i *Index) Len() int { return len(i.matches) }

// CurrentIndex returns the position of the current match, or 0 when the
// index is empty.
func (i *Index) CurrentIndex() int { return i.current }

// Current returns the match at the current position and true, or a zero
// Match and false when there are no matches.
func (i *Index) Current() (Match, bool) {
	if len(i.matches) == 0 {
		return Match{}, false
	}
	return i.matches[i.current], true
}

// Next advances to the next match, wrapping past the end, and returns it.
// On a single-result index the position stays at 0.
func (i *Index) Next() (Match, bool) {
	if len(i.matches) == 0 {
		return Match{}, false
	}
	i.current = (i.current + 1) % len(i.matches)
	return i.matches[i.current], true
}

// Prev steps back to the previous match, wrapping past the start, and
// returns it.
func (i *Index) Prev() (Match, bool) {
	if len(i.matches) == 0 {
		return Match{}, false
	}
	i.current = (i.current - 1 + len(i.matches)) % len(i.matches)
	return i.matches[i.current], true
}
