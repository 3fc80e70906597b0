package paging

import (
	"reflect"
	"testing"
)

func TestTargetClampsToTotalPages(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 1, Size: 15, Total: 47, Pages: 4, Count: 15})
	if c.TotalPages() != 4 {
		t.Fatalf("expected 4 pages, got %d", c.TotalPages())
	}
	if got := c.Target(5); got != 4 {
		t.Fatalf("expected page 5 to clamp to 4, got %d", got)
	}
	if got := c.Target(0); got != 1 {
		t.Fatalf("expected page 0 to clamp to 1, got %d", got)
	}
	if c.Page() != 1 {
		t.Fatalf("Target must not commit, page is %d", c.Page())
	}
}

func TestApplyCommitsEnvelope(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 2, Size: 15, Total: 47, Pages: 4, Count: 15})
	if c.Page() != 2 || c.TotalItems() != 47 {
		t.Fatalf("unexpected state page=%d total=%d", c.Page(), c.TotalItems())
	}
	if !c.HasNext() || !c.HasPrev() {
		t.Fatalf("expected both directions available")
	}
	if c.Next() != 3 || c.Prev() != 1 {
		t.Fatalf("unexpected neighbours %d/%d", c.Prev(), c.Next())
	}
	if got := c.Range(); got != "Showing 16 to 30 of 47" {
		t.Fatalf("unexpected range %q", got)
	}
	c.Apply(Envelope{Page: 4, Size: 15, Total: 47, Pages: 4, Count: 2})
	if got := c.Range(); got != "Showing 46 to 47 of 47" {
		t.Fatalf("unexpected last range %q", got)
	}
	if c.Summary() != "page 4/4" {
		t.Fatalf("unexpected summary %q", c.Summary())
	}
}

func TestSetPageSizeResetsPage(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 3, Size: 15, Total: 47, Pages: 4, Count: 15})
	c.SetPageSize(25)
	if c.Page() != 1 || c.Size() != 25 {
		t.Fatalf("expected page 1 size 25, got page %d size %d", c.Page(), c.Size())
	}
}

func TestStepBackAfterEmptyPage(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 4, Size: 15, Total: 45, Pages: 3, Count: 0})
	if !c.NeedsStepBack() {
		t.Fatalf("expected step back for empty page 4")
	}
	if c.StepBack() != 3 {
		t.Fatalf("expected step back to 3, got %d", c.StepBack())
	}
	c.Apply(Envelope{Page: 1, Size: 15, Total: 0, Pages: 1, Count: 0})
	if c.NeedsStepBack() {
		t.Fatalf("empty first page must not step back")
	}
	if got := c.Range(); got != "Showing 0 of 0" {
		t.Fatalf("unexpected empty range %q", got)
	}
}

func TestApplyClampsPagePastEnd(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 5, Size: 15, Total: 47, Pages: 4, Count: 2})
	if c.Page() != 4 {
		t.Fatalf("expected page 5 to clamp to 4, got %d", c.Page())
	}
	if c.Summary() != "page 4/4" {
		t.Fatalf("unexpected summary %q", c.Summary())
	}
	if c.NeedsStepBack() {
		t.Fatalf("non-empty page must not step back")
	}
}

func TestStepBackFollowsRequestedPage(t *testing.T) {
	c := New(15)
	c.Apply(Envelope{Page: 3, Size: 15, Total: 30, Pages: 2, Count: 0, Requested: 3})
	if c.Page() != 2 {
		t.Fatalf("expected committed page clamped to 2, got %d", c.Page())
	}
	if !c.NeedsStepBack() || c.StepBack() != 2 {
		t.Fatalf("expected step back from requested page 3 to 2, got %d", c.StepBack())
	}
	c.Apply(Envelope{Page: 2, Size: 15, Total: 0, Pages: 1, Count: 0, Requested: 2})
	if !c.NeedsStepBack() || c.StepBack() != 1 {
		t.Fatalf("expected step back to 1 once the list is empty, got %d", c.StepBack())
	}
	c.Apply(Envelope{Page: 1, Size: 15, Total: 0, Pages: 1, Count: 0, Requested: 1})
	if c.NeedsStepBack() {
		t.Fatalf("empty first page must not step back")
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 4, []int{1, 2, 3, 4}},
		{5, 9, []int{1, Gap, 3, 4, 5, 6, 7, Gap, 9}},
		{1, 9, []int{1, 2, 3, Gap, 9}},
		{9, 9, []int{1, Gap, 7, 8, 9}},
		{12, 3, []int{1, 2, 3}},
	}
	for _, tc := range cases {
		if got := Window(tc.current, tc.total, 2); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Window(%d,%d) = %v, want %v", tc.current, tc.total, got, tc.want)
		}
	}
	if got := FormatWindow(Window(5, 9, 1), 5); got != "1 … 4 [5] 6 … 9" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestNextSizeCycles(t *testing.T) {
	if NextSize(15) != 25 || NextSize(100) != 10 || NextSize(7) != DefaultSize {
		t.Fatalf("unexpected size cycle")
	}
}
