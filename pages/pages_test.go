package pages

import (
	"strconv"
	"testing"
	"time"

	"github.com/Clinet/squadbot/services"
)

func makeItems(n int) []*services.MessageField {
	items := make([]*services.MessageField, n)
	for i := range items {
		items[i] = &services.MessageField{Name: "#" + strconv.Itoa(i+1), Value: "item"}
	}
	return items
}

func TestPagedList(t *testing.T) {
	list, err := NewPagedList(makeItems(12), 5)
	if err != nil {
		t.Fatalf("NewPagedList: %v", err)
	}
	list.SetTitle("Scrims")

	if list.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", list.TotalPages)
	}

	page, err := list.GetCurrentPage()
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Fields) != 5 || page.Footer != "Page 1/3" || page.Title != "Scrims" {
		t.Errorf("first page = %d fields, footer %q, title %q", len(page.Fields), page.Footer, page.Title)
	}

	page, err = list.GetPage(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Fields) != 2 || page.Fields[0].Name != "#11" || !list.LastPage {
		t.Errorf("last page = %+v, last %v", page.Fields, list.LastPage)
	}

	if _, err := list.GetNextPage(); err == nil {
		t.Error("paging past the end should fail")
	}
	if _, err := list.GetPage(0); err == nil {
		t.Error("page 0 should fail")
	}
}

func TestPagedListLimits(t *testing.T) {
	if _, err := NewPagedList(nil, 5); err == nil {
		t.Error("empty lists are rejected")
	}
	if _, err := NewPagedList(makeItems(3), 0); err == nil {
		t.Error("zero results per page are rejected")
	}

	list, err := NewPagedList(makeItems(30), 25)
	if err != nil {
		t.Fatal(err)
	}
	if err := list.Check(); err == nil {
		t.Error("a page size at the embed field limit should fail Check")
	}

	single, _ := NewPagedList(makeItems(2), 5)
	if !single.FirstPage || !single.LastPage {
		t.Error("a single page is both first and last")
	}
}

func TestPagerFlip(t *testing.T) {
	pager := NewPager()
	list, _ := NewPagedList(makeItems(7), 3)
	pager.Track("msg", list)

	if _, err := pager.Flip("msg", EmojiPrev); err != ErrNoPage {
		t.Errorf("flipping back from page 1: err = %v", err)
	}

	page, err := pager.Flip("msg", EmojiNext)
	if err != nil || page.Footer != "Page 2/3" {
		t.Fatalf("next = %+v, %v", page, err)
	}
	//Some clients drop the variation selector
	page, err = pager.Flip("msg", "\u27a1")
	if err != nil || page.Footer != "Page 3/3" {
		t.Fatalf("next without selector = %+v, %v", page, err)
	}
	if _, err := pager.Flip("msg", EmojiNext); err != ErrNoPage {
		t.Errorf("flipping past the end: err = %v", err)
	}
	if _, err := pager.Flip("msg", "\U0001f44d"); err != ErrNoPage {
		t.Errorf("unrelated emoji: err = %v", err)
	}
	if _, err := pager.Flip("other", EmojiNext); err != ErrNotTracked {
		t.Errorf("untracked message: err = %v", err)
	}
}

func TestPagerExpiry(t *testing.T) {
	now := time.Now()
	pager := NewPager()
	pager.now = func() time.Time { return now }

	list, _ := NewPagedList(makeItems(7), 3)
	pager.Track("msg", list)
	if pager.Tracked() != 1 {
		t.Fatal("list was not tracked")
	}

	now = now.Add(Expiry + time.Second)
	if _, err := pager.Flip("msg", EmojiNext); err != ErrNotTracked {
		t.Errorf("expired list: err = %v", err)
	}
	if pager.Tracked() != 0 {
		t.Error("expired list was not swept")
	}
}

func TestPagerUntrack(t *testing.T) {
	pager := NewPager()
	list, _ := NewPagedList(makeItems(7), 3)
	pager.Track("msg", list)
	pager.Track("other", list)

	pager.Untrack("msg")
	if _, err := pager.Flip("msg", EmojiNext); err != ErrNotTracked {
		t.Errorf("untracked list still flips: err = %v", err)
	}
	if pager.Tracked() != 1 {
		t.Errorf("Tracked() = %d, want 1", pager.Tracked())
	}
	pager.Untrack("missing")
}
