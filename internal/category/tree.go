// Package category builds a two-level view over a user's flat category set.
// Roots have no parent; children point at a root; deeper nesting and
// self-references are rejected at write time.
package category

import (
	"sort"
	"strings"

	"github.com/dmelton/splitbook/internal/domain"
)

// Tree indexes a snapshot of one user's categories. It holds no state
// beyond the snapshot and is cheap to rebuild per request.
type Tree struct {
	byID     map[string]domain.Category
	children map[string][]domain.Category
}

// New builds a tree from the full flat set of a user's categories.
func New(cats []domain.Category) *Tree {
	t := &Tree{
		byID:     make(map[string]domain.Category, len(cats)),
		children: make(map[string][]domain.Category),
	}
	for _, c := range cats {
		t.byID[c.ID] = c
		if c.ParentID != "" {
			t.children[c.ParentID] = append(t.children[c.ParentID], c)
		}
	}
	for id := range t.children {
		sortByName(t.children[id])
	}
	return t
}

// Get returns the category with the given id.
func (t *Tree) Get(id string) (domain.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Roots returns the categories with no parent, ordered by name
// (case-insensitive).
func (t *Tree) Roots() []domain.Category {
	var roots []domain.Category
	for _, c := range t.byID {
		if c.ParentID == "" {
			roots = append(roots, c)
		}
	}
	sortByName(roots)
	return roots
}

// ChildrenOf returns the direct children of a category, ordered by name.
func (t *Tree) ChildrenOf(id string) []domain.Category {
	return t.children[id]
}

// Breadcrumb returns [rootName, childName] for a child category, or
// [rootName] for a root. Unknown ids yield nil.
func (t *Tree) Breadcrumb(id string) []string {
	c, ok := t.byID[id]
	if !ok {
		return nil
	}
	if c.ParentID == "" {
		return []string{c.Name}
	}
	parent, ok := t.byID[c.ParentID]
	if !ok {
		return []string{c.Name}
	}
	return []string{parent.Name, c.Name}
}

// CanDelete reports whether the category has no children and may be
// deleted.
func (t *Tree) CanDelete(id string) bool {
	return len(t.children[id]) == 0
}

// FindByName returns the category whose name matches, case-insensitively.
func (t *Tree) FindByName(name string) (domain.Category, bool) {
	for _, c := range t.byID {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return domain.Category{}, false
}

// ValidateRelation checks a category's parent reference against the
// snapshot before an insert or update: no self-reference, the parent must
// exist and belong to the same user, and the parent must itself be a root
// (depth is capped at two levels).
func (t *Tree) ValidateRelation(cat domain.Category) error {
	if cat.ParentID == "" {
		return nil
	}
	if cat.ParentID == cat.ID {
		return &domain.ErrInvalidCategoryRelation{CategoryID: cat.ID, Reason: "parentId cannot equal the category's own id"}
	}
	parent, ok := t.byID[cat.ParentID]
	if !ok {
		return &domain.ErrInvalidCategoryRelation{CategoryID: cat.ID, Reason: "parent category does not exist: " + cat.ParentID}
	}
	if parent.UserID != cat.UserID {
		return &domain.ErrInvalidCategoryRelation{CategoryID: cat.ID, Reason: "parent category belongs to a different user"}
	}
	if parent.ParentID != "" {
		return &domain.ErrInvalidCategoryRelation{CategoryID: cat.ID, Reason: "parent is itself a child category: nesting deeper than two levels is not allowed"}
	}
	return nil
}

func sortByName(cats []domain.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		a, b := strings.ToLower(cats[i].Name), strings.ToLower(cats[j].Name)
		if a == b {
			return cats[i].Name < cats[j].Name
		}
		return a < b
	})
}
