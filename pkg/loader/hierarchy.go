package loader

// BuildHierarchy assembles flat items into trees using their Parent
// references. Items without a parent, or whose parent is unknown, become
// roots. Items caught in a parent cycle are attached once; the item where
// the cycle is first entered becomes a root. Input order is kept among
// siblings.
func BuildHierarchy(items []*Item) []*Item {
	if len(items) == 0 {
		return nil
	}

	// Step 1: index items and their children
	byID := make(map[string]*Item, len(items))
	childrenOf := make(map[string][]*Item)
	for _, it := range items {
		byID[it.ID] = it
	}
	for _, it := range items {
		if it.Parent != "" {
			if _, ok := byID[it.Parent]; ok {
				childrenOf[it.Parent] = append(childrenOf[it.Parent], it)
			}
		}
	}

	// Step 2: roots are items with no existing parent
	var roots []*Item
	for _, it := range items {
		if _, ok := byID[it.Parent]; it.Parent == "" || !ok {
			roots = append(roots, it)
		}
	}

	// Step 3: link children with cycle detection
	visited := make(map[string]bool, len(items))
	var link func(it *Item)
	link = func(it *Item) {
		visited[it.ID] = true
		it.Children = it.Children[:0]
		for _, c := range childrenOf[it.ID] {
			if visited[c.ID] {
				continue
			}
			it.Children = append(it.Children, c)
			link(c)
		}
	}
	for _, r := range roots {
		link(r)
	}

	// Step 4: anything left is part of a cycle with no way in
	for _, it := range items {
		if !visited[it.ID] {
			roots = append(roots, it)
			link(it)
		}
	}
	return roots
}
