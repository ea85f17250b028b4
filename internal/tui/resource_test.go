package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/digicoders-git/ksadmin/internal/router"
	"github.com/digicoders-git/ksadmin/pkg/domain"
)

func newTestResourcePage(copyFn func(string) error) *resourcePage {
	e, _ := router.DefaultRegistry().Lookup("/orders")
	return newResourcePage(e, pageEnv{api: &fakeAPI{}, copy: copyFn, now: time.Now})
}

func testOrders() []domain.Record {
	return []domain.Record{
		{"_id": "o1", "status": "pending", "total": 250.0, "customer": map[string]any{"name": "Ravi"}},
		{"_id": "o2", "status": "delivered", "total": 90.0},
		{"_id": "o3", "status": "cancelled", "total": 1200.0},
	}
}

func loadedPage(t *testing.T, copyFn func(string) error) *resourcePage {
	t.Helper()
	p := newTestResourcePage(copyFn)
	pg, _ := p.Update(recordsLoadedMsg{path: "/orders", records: testOrders()})
	return pg.(*resourcePage)
}

func sendKeys(p *resourcePage, keys ...string) (*resourcePage, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var pg page
		pg, cmd = p.Update(key(k))
		p = pg.(*resourcePage)
	}
	return p, cmd
}

func visibleIDs(p *resourcePage) []string {
	ids := make([]string, 0, len(p.visible))
	for _, i := range p.visible {
		ids = append(ids, p.records[i].ID())
	}
	return ids
}

func TestResourceRendersRecords(t *testing.T) {
	p := loadedPage(t, nil)
	view := p.View(100, 20)
	for _, want := range []string{"Orders", "o1", "o2", "o3", "pending", "3 of 3"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view, got:\n%s", want, view)
		}
	}
}

func TestResourceIgnoresStaleResults(t *testing.T) {
	p := newTestResourcePage(nil)
	pg, _ := p.Update(recordsLoadedMsg{path: "/products", records: testOrders()})
	if len(pg.(*resourcePage).records) != 0 {
		t.Error("records from another path were applied")
	}
}

func TestResourceLoadError(t *testing.T) {
	p := newTestResourcePage(nil)
	pg, _ := p.Update(recordsLoadedMsg{path: "/orders", err: errors.New("HTTP 500: boom")})
	if view := pg.View(80, 20); !strings.Contains(view, "boom") {
		t.Errorf("expected error in view, got:\n%s", view)
	}
}

func TestResourceEmpty(t *testing.T) {
	p := newTestResourcePage(nil)
	pg, _ := p.Update(recordsLoadedMsg{path: "/orders"})
	if view := pg.View(80, 20); !strings.Contains(view, "nothing here yet") {
		t.Errorf("expected empty state, got:\n%s", view)
	}
}

func TestResourceColumns(t *testing.T) {
	cols := columnsFor(testOrders())
	want := []string{"status", "total"}
	if len(cols) != len(want) {
		t.Fatalf("columnsFor() = %v, want %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("columnsFor()[%d] = %q, want %q", i, cols[i], want[i])
		}
	}
}

func TestResourceColumnsCap(t *testing.T) {
	rec := domain.Record{"_id": "x", "a": 1.0, "b": 2.0, "c": 3.0, "d": 4.0, "e": 5.0, "name": "n", "password": "p"}
	cols := columnsFor([]domain.Record{rec})
	if len(cols) != maxColumns {
		t.Fatalf("len(columnsFor()) = %d, want %d", len(cols), maxColumns)
	}
	if cols[0] != "name" {
		t.Errorf("first column = %q, want preferred %q", cols[0], "name")
	}
	for _, c := range cols {
		if c == "password" || c == "_id" {
			t.Errorf("column %q should be skipped", c)
		}
	}
}

func TestResourceFilter(t *testing.T) {
	p := loadedPage(t, nil)
	p, _ = sendKeys(p, "/")
	if !p.editing() {
		t.Fatal("expected editing while filter is focused")
	}
	p, _ = sendKeys(p, "deliv")
	if got := visibleIDs(p); len(got) != 1 || got[0] != "o2" {
		t.Errorf("visible = %v, want [o2]", got)
	}

	p, _ = sendKeys(p, "enter")
	if p.editing() {
		t.Error("still editing after enter")
	}
	if len(p.visible) != 1 {
		t.Error("enter should keep the filter")
	}

	p, _ = sendKeys(p, "/", "esc")
	if len(p.visible) != 3 {
		t.Errorf("esc should clear the filter, visible = %v", visibleIDs(p))
	}
}

func TestResourceSort(t *testing.T) {
	p := loadedPage(t, nil)

	// s cycles status -> total -> server order.
	p, _ = sendKeys(p, "s")
	if got := visibleIDs(p); strings.Join(got, ",") != "o3,o2,o1" {
		t.Errorf("sort by status = %v, want cancelled, delivered, pending", got)
	}
	p, _ = sendKeys(p, "s")
	if got := visibleIDs(p); strings.Join(got, ",") != "o2,o1,o3" {
		t.Errorf("sort by total = %v, want numeric order", got)
	}
	p, _ = sendKeys(p, "S")
	if got := visibleIDs(p); strings.Join(got, ",") != "o3,o1,o2" {
		t.Errorf("sort by total desc = %v", got)
	}
	p, _ = sendKeys(p, "s")
	if p.sortCol != -1 {
		t.Errorf("sortCol = %d, want -1 after cycling", p.sortCol)
	}
}

func TestResourceCursorAndDetail(t *testing.T) {
	p := loadedPage(t, nil)
	p, _ = sendKeys(p, "j", "j", "j")
	if p.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", p.cursor)
	}
	p, _ = sendKeys(p, "enter")
	if !p.detail {
		t.Fatal("expected detail overlay")
	}
	view := p.View(100, 30)
	if !strings.Contains(view, "o3") || !strings.Contains(view, "1200") {
		t.Errorf("detail view missing fields:\n%s", view)
	}
	p, _ = sendKeys(p, "esc")
	if p.detail {
		t.Error("esc did not close detail")
	}
}

func TestResourceDetailShowsNested(t *testing.T) {
	view := detailView("Orders", testOrders()[0], 100)
	if !strings.Contains(view, "Ravi") {
		t.Errorf("expected nested customer in detail, got:\n%s", view)
	}
}

func TestResourceCopyID(t *testing.T) {
	var copied string
	p := loadedPage(t, func(s string) error {
		copied = s
		return nil
	})
	p, _ = sendKeys(p, "j")
	p, cmd := sendKeys(p, "c")
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	pg, _ := p.Update(cmd())
	p = pg.(*resourcePage)

	if copied != "o2" {
		t.Errorf("copied = %q, want o2", copied)
	}
	if !strings.Contains(p.View(100, 20), "copied o2") {
		t.Error("expected copy confirmation")
	}
}

func TestResourceCopyFailure(t *testing.T) {
	p := loadedPage(t, func(string) error { return errors.New("no clipboard") })
	p, cmd := sendKeys(p, "c")
	pg, _ := p.Update(cmd())
	if !strings.Contains(pg.View(100, 20), "copy failed") {
		t.Error("expected copy failure message")
	}
}

func TestResourceRefresh(t *testing.T) {
	p := loadedPage(t, nil)
	p, cmd := sendKeys(p, "r")
	if cmd == nil || !p.loading {
		t.Error("expected reload command and loading flag")
	}
}

func TestEndpointFor(t *testing.T) {
	if got := endpointFor("/mlm/referrals"); got != "/api/mlm/referrals" {
		t.Errorf("endpointFor() = %q", got)
	}
}
