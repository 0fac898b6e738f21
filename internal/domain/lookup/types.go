package lookup

// CategoryNode is one node of the catalog's product-group hierarchy. The
// upstream document is a map of id → node at every level.
type CategoryNode struct {
	Text     string                  `json:"text"`
	Children map[string]CategoryNode `json:"children,omitempty"`
}

// LeafCategory is a category with no children: the only level parts can
// actually be searched under.
type LeafCategory struct {
	ID   string `json:"categoryId"`
	Name string `json:"categoryName"`
}

// CategoryGroup is a root category together with every leaf beneath it.
type CategoryGroup struct {
	ID     string         `json:"groupId"`
	Name   string         `json:"groupName"`
	Leaves []LeafCategory `json:"categories"`
}
