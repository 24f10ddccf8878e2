package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	n := Params{}.Normalize()
	if n.Page != 1 || n.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults: %+v", n)
	}
}

func TestNormalizeCapsPageSize(t *testing.T) {
	n := Params{Page: 2, PageSize: 5000}.Normalize()
	if n.PageSize != MaxPageSize {
		t.Fatalf("expected cap %d, got %d", MaxPageSize, n.PageSize)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for defaults, got %d", got)
	}
}

func TestNewPageRoundsTotalPagesUp(t *testing.T) {
	page := NewPage([]string{"a", "b"}, Params{Page: 1, PageSize: 10}, 21)
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}
	if page.TotalItems != 21 {
		t.Fatalf("expected 21 items, got %d", page.TotalItems)
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[string](nil, Params{}, 0)
	if page.Items == nil {
		t.Fatalf("items should be an empty slice")
	}
}
