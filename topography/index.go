package topography

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// Index is the immutable three-level filter hierarchy plus a per-node
// bitmap of the vocabulary term positions that descend from it. It is
// built once per snapshot and read-only afterwards, so concurrent
// queries need no locking.
type Index struct {
	nodes    []entities.FilterNode // position == node ID, nodes[0] unused
	children map[int32][]int32     // direct children in first-encounter order
	roots    []int32               // macrogrouping IDs in first-encounter order
	byName   map[int32]map[string]int32

	termBits map[int32]*roaring.Bitmap // node ID -> term positions
	siteOf   []int32                   // term position -> site ID, 0 unresolved
}

// BuildStats reports what Build could not place in the hierarchy.
type BuildStats struct {
	RowsSkipped     int // rows missing a name or with an unparseable code
	UnresolvedTerms int // terms whose topography code matched no rule
}

type ruleSet struct {
	rules  []Rule
	siteID int32
}

// Build walks the topography rows in file order, creating one node per
// distinct name within its parent, then resolves every term's
// topography code against the row rules (first match wins) and fills
// the per-node term bitmaps. Terms that resolve to no site keep
// SiteID 0: they are invisible to filtered queries but still reachable
// by unfiltered text search.
func Build(terms []entities.Term, rows []entities.TopographyRow) (*Index, BuildStats) {
	idx := &Index{
		nodes:    make([]entities.FilterNode, 1), // 1-based IDs
		children: make(map[int32][]int32),
		byName:   make(map[int32]map[string]int32),
		termBits: make(map[int32]*roaring.Bitmap),
		siteOf:   make([]int32, len(terms)),
	}
	var stats BuildStats

	ruleSets := make([]ruleSet, 0, len(rows))
	for _, row := range rows {
		if row.Macrogrouping == "" || row.Group == "" || row.Site == "" {
			stats.RowsSkipped++
			continue
		}
		rules := ExpandCode(row.ICDO3)
		if len(rules) == 0 {
			stats.RowsSkipped++
			continue
		}

		macroID := idx.ensureNode(entities.LevelMacrogrouping, row.Macrogrouping, 0)
		groupID := idx.ensureNode(entities.LevelGroup, row.Group, macroID)
		siteID := idx.ensureNode(entities.LevelSite, row.Site, groupID)
		ruleSets = append(ruleSets, ruleSet{rules: rules, siteID: siteID})
	}

	// Many terms share a topography code, resolve each code once.
	siteByCode := make(map[string]int32)
	for i := range terms {
		code := terms[i].TopoCode
		if code == "" {
			stats.UnresolvedTerms++
			continue
		}

		siteID, seen := siteByCode[code]
		if !seen {
			for _, rs := range ruleSets {
				if Matches(code, rs.rules) {
					siteID = rs.siteID
					break
				}
			}
			siteByCode[code] = siteID
		}

		if siteID == 0 {
			stats.UnresolvedTerms++
			continue
		}

		terms[i].SiteID = siteID
		idx.siteOf[i] = siteID
		idx.bitmap(siteID).Add(uint32(i))
	}

	// Group bitmaps are the union of their sites, macrogroupings the
	// union of their groups.
	for _, macroID := range idx.roots {
		macroBits := idx.bitmap(macroID)
		for _, groupID := range idx.children[macroID] {
			groupBits := idx.bitmap(groupID)
			for _, siteID := range idx.children[groupID] {
				groupBits.Or(idx.bitmap(siteID))
			}
			macroBits.Or(groupBits)
		}
	}

	return idx, stats
}

// ensureNode returns the node for (level, name, parent), creating it on
// first encounter. Duplicate names within one parent share a node.
func (idx *Index) ensureNode(level entities.Level, name string, parentID int32) int32 {
	names, ok := idx.byName[parentID]
	if !ok {
		names = make(map[string]int32)
		idx.byName[parentID] = names
	}
	if id, ok := names[name]; ok {
		return id
	}

	id := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, entities.FilterNode{
		ID:       id,
		Level:    level,
		Name:     name,
		ParentID: parentID,
	})
	names[name] = id

	if parentID == 0 {
		idx.roots = append(idx.roots, id)
	} else {
		idx.children[parentID] = append(idx.children[parentID], id)
	}
	return id
}

func (idx *Index) bitmap(nodeID int32) *roaring.Bitmap {
	bits, ok := idx.termBits[nodeID]
	if !ok {
		bits = roaring.New()
		idx.termBits[nodeID] = bits
	}
	return bits
}

// Node returns the node with the given ID.
func (idx *Index) Node(id int32) (entities.FilterNode, bool) {
	if id < 1 || int(id) >= len(idx.nodes) {
		return entities.FilterNode{}, false
	}
	return idx.nodes[id], true
}

// Macrogroupings returns the root nodes in first-encounter order.
func (idx *Index) Macrogroupings() []entities.FilterNode {
	out := make([]entities.FilterNode, 0, len(idx.roots))
	for _, id := range idx.roots {
		out = append(out, idx.nodes[id])
	}
	return out
}

// ChildrenOf returns the direct children of a node in first-encounter
// order. Sites have no children.
func (idx *Index) ChildrenOf(nodeID int32) []entities.FilterNode {
	ids := idx.children[nodeID]
	out := make([]entities.FilterNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.nodes[id])
	}
	return out
}

// DescendantTerms returns the positions of every term whose site
// transitively descends from the node. The returned bitmap is shared
// and must not be mutated by callers.
func (idx *Index) DescendantTerms(nodeID int32) *roaring.Bitmap {
	if bits, ok := idx.termBits[nodeID]; ok {
		return bits
	}
	return roaring.New()
}

// SiteOfTerm returns the resolved site of the term at the given
// position, 0 if unresolved.
func (idx *Index) SiteOfTerm(pos int) int32 {
	if pos < 0 || pos >= len(idx.siteOf) {
		return 0
	}
	return idx.siteOf[pos]
}

// NodeCount returns the number of hierarchy nodes.
func (idx *Index) NodeCount() int {
	return len(idx.nodes) - 1
}
