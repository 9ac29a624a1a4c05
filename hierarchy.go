package docstore

import "fmt"

// BuildHierarchy materializes the folder tree from flat folder and document
// rows. Children and documents keep the order of the input slices; repos
// return both ordered by ascending ID so the tree is deterministic.
//
// The returned root is the single folder with a nil parent. Child nodes are
// shared pointers into the same tree, not copies.
//
// A document or non-root folder referencing an unknown parent is a
// data-integrity failure and returns an error wrapping ErrIntegrity; the
// foreign keys make this unreachable in practice, but it must never be
// reformatted as silent data loss.
func BuildHierarchy(folders []Folder, documents []Document) (*HierarchyNode, error) {
	nodes := make(map[string]*HierarchyNode, len(folders))
	for _, f := range folders {
		if _, exists := nodes[f.ID]; exists {
			return nil, fmt.Errorf("build hierarchy: duplicate folder id %s: %w", f.ID, ErrIntegrity)
		}
		nodes[f.ID] = &HierarchyNode{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			Children:  []*HierarchyNode{},
			Documents: []Document{},
		}
	}

	for _, d := range documents {
		parent, ok := nodes[d.FolderID]
		if !ok {
			return nil, fmt.Errorf("build hierarchy: document %s references unknown folder %s: %w", d.ID, d.FolderID, ErrIntegrity)
		}
		parent.Documents = append(parent.Documents, d)
	}

	var root *HierarchyNode
	for _, f := range folders {
		if f.IsRoot() {
			if root != nil {
				return nil, fmt.Errorf("build hierarchy: multiple root folders (%s, %s): %w", root.ID, f.ID, ErrIntegrity)
			}
			root = nodes[f.ID]
			continue
		}

		parent, ok := nodes[*f.ParentID]
		if !ok {
			return nil, fmt.Errorf("build hierarchy: folder %s references unknown parent %s: %w", f.ID, *f.ParentID, ErrIntegrity)
		}
		parent.Children = append(parent.Children, nodes[f.ID])
	}

	if root == nil {
		return nil, fmt.Errorf("build hierarchy: no root folder: %w", ErrIntegrity)
	}

	return root, nil
}
