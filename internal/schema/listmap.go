package schema

// List-shape detection. All three forms are attempted, two-level first,
// then three-level, then one-level, since the one-level form (a bare
// repeated leaf as both list and item) is indistinguishable from "this is
// just a repeated scalar field" except by the caller already knowing it
// wants list semantics — so one-level is the fallback, not the first
// guess, to avoid mis-classifying an ordinary repeated column.

// resolveListItem returns the node representing one list element beneath
// group, trying two-level then three-level then one-level forms in that
// order, first success wins.
func resolveListItem(group *Node) (item *Node, ok bool) {
	if item, ok := twoLevelItem(group); ok {
		return item, true
	}
	if item, ok := threeLevelItem(group); ok {
		return item, true
	}
	if item, ok := oneLevelItem(group); ok {
		return item, true
	}
	return nil, false
}

// twoLevelItem: group containing exactly one repeated field whose type is
// the item itself (no extra wrapping group).
func twoLevelItem(group *Node) (*Node, bool) {
	if group.IsLeaf() || len(group.Children) != 1 {
		return nil, false
	}
	child := group.Children[0]
	if !child.IsRepeated() {
		return nil, false
	}
	return child, true
}

// threeLevelItem: group containing exactly one repeated group whose sole
// child is the item (the "official" Parquet LIST annotation shape:
// group(LIST) { repeated group list { <item> } }).
func threeLevelItem(group *Node) (*Node, bool) {
	if group.IsLeaf() || len(group.Children) != 1 {
		return nil, false
	}
	repeatedGroup := group.Children[0]
	if !repeatedGroup.IsRepeated() || repeatedGroup.IsLeaf() {
		return nil, false
	}
	if len(repeatedGroup.Children) != 1 {
		return nil, false
	}
	return repeatedGroup.Children[0], true
}

// oneLevelItem: a bare repeated leaf is both the list and its item. It is
// tried last, after the two- and three-level forms fail, and only checks
// that group itself is repeated; group is returned as its own item.
func oneLevelItem(group *Node) (*Node, bool) {
	if group.IsRepeated() {
		return group, true
	}
	return nil, false
}

// resolveMapEntry finds the key and value children of a map-shaped group:
// a single repeated child with exactly two grandchildren. Key/value are
// disambiguated by name ("key"/"value") first, falling back to position
// (first child = key, second = value).
func resolveMapEntry(group *Node) (key, value *Node, ok bool) {
	if group.IsLeaf() || len(group.Children) != 1 {
		return nil, nil, false
	}
	entry := group.Children[0]
	if !entry.IsRepeated() || len(entry.Children) != 2 {
		return nil, nil, false
	}
	a, b := entry.Children[0], entry.Children[1]
	if a.Element.Name == "key" && b.Element.Name == "value" {
		return a, b, true
	}
	if a.Element.Name == "value" && b.Element.Name == "key" {
		return b, a, true
	}
	return a, b, true
}
