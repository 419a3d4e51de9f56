package category_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dmelton/splitbook/internal/category"
	"github.com/dmelton/splitbook/internal/domain"
)

func sampleTree() *category.Tree {
	return category.New([]domain.Category{
		{ID: "c1", UserID: "u1", Name: "Food"},
		{ID: "c2", UserID: "u1", Name: "groceries", ParentID: "c1"},
		{ID: "c3", UserID: "u1", Name: "Dining Out", ParentID: "c1"},
		{ID: "c4", UserID: "u1", Name: "Bills"},
		{ID: "c5", UserID: "u1", Name: "Electricity", ParentID: "c4"},
	})
}

func names(cats []domain.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}

func TestRoots_OrderedCaseInsensitive(t *testing.T) {
	got := names(sampleTree().Roots())
	want := []string{"Bills", "Food"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Roots() = %v, want %v", got, want)
	}
}

func TestChildrenOf(t *testing.T) {
	got := names(sampleTree().ChildrenOf("c1"))
	want := []string{"Dining Out", "groceries"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ChildrenOf(c1) = %v, want %v", got, want)
	}

	if children := sampleTree().ChildrenOf("c2"); len(children) != 0 {
		t.Errorf("leaf category has children: %v", names(children))
	}
}

func TestBreadcrumb(t *testing.T) {
	tree := sampleTree()

	if got := tree.Breadcrumb("c2"); !reflect.DeepEqual(got, []string{"Food", "groceries"}) {
		t.Errorf("Breadcrumb(c2) = %v", got)
	}
	if got := tree.Breadcrumb("c4"); !reflect.DeepEqual(got, []string{"Bills"}) {
		t.Errorf("Breadcrumb(c4) = %v", got)
	}
	if got := tree.Breadcrumb("missing"); got != nil {
		t.Errorf("Breadcrumb(missing) = %v, want nil", got)
	}
}

// canDelete must agree with childrenOf across the whole snapshot.
func TestCanDelete_MatchesChildren(t *testing.T) {
	tree := sampleTree()
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		want := len(tree.ChildrenOf(id)) == 0
		if got := tree.CanDelete(id); got != want {
			t.Errorf("CanDelete(%s) = %v, want %v", id, got, want)
		}
	}
}

func TestFindByName_CaseInsensitive(t *testing.T) {
	tree := sampleTree()
	c, ok := tree.FindByName("GROCERIES")
	if !ok || c.ID != "c2" {
		t.Fatalf("FindByName(GROCERIES) = %v, %v", c, ok)
	}
	if _, ok := tree.FindByName("Rent"); ok {
		t.Fatal("FindByName(Rent) should not match")
	}
}

func TestValidateRelation(t *testing.T) {
	tree := sampleTree()

	cases := []struct {
		name string
		cat  domain.Category
		ok   bool
	}{
		{"root is always fine", domain.Category{ID: "c9", UserID: "u1", Name: "Travel"}, true},
		{"child of a root", domain.Category{ID: "c9", UserID: "u1", Name: "Flights", ParentID: "c4"}, true},
		{"self parent", domain.Category{ID: "c9", UserID: "u1", ParentID: "c9"}, false},
		{"missing parent", domain.Category{ID: "c9", UserID: "u1", ParentID: "nope"}, false},
		{"cross-user parent", domain.Category{ID: "c9", UserID: "u2", ParentID: "c1"}, false},
		{"grandchild", domain.Category{ID: "c9", UserID: "u1", ParentID: "c2"}, false},
	}

	for _, c := range cases {
		err := tree.ValidateRelation(c.cat)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok {
			var relation *domain.ErrInvalidCategoryRelation
			if !errors.As(err, &relation) {
				t.Errorf("%s: expected ErrInvalidCategoryRelation, got %v", c.name, err)
			}
		}
	}
}
