package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	p1, err := s.GetOrCreateUser(ctx, 100)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if p1.ChatID != 100 || len(p1.Macros) != 0 || len(p1.Branches) != 0 {
		t.Fatalf("expected empty default record, got %+v", p1)
	}

	// Idempotent: a second call returns the same record.
	if _, err := s.ToggleMacro(ctx, 100, "Finanza"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	p2, err := s.GetOrCreateUser(ctx, 100)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if diff := cmp.Diff([]string{"Finanza"}, p2.Macros); diff != "" {
		t.Errorf("macros mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleIdempotence(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	first, err := s.ToggleMacro(ctx, 1, "Finanza")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if diff := cmp.Diff([]string{"Finanza"}, first.Macros); diff != "" {
		t.Errorf("after first toggle (-want +got):\n%s", diff)
	}

	second, err := s.ToggleMacro(ctx, 1, "Finanza")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if len(second.Macros) != 0 {
		t.Errorf("double toggle must restore the original set, got %v", second.Macros)
	}
}

func TestToggleBranchKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for _, b := range []string{"Automazione", "Mercati", "Locale"} {
		if _, err := s.ToggleBranch(ctx, 2, b); err != nil {
			t.Fatalf("toggle %s: %v", b, err)
		}
	}
	p, err := s.ToggleBranch(ctx, 2, "Mercati")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if diff := cmp.Diff([]string{"Automazione", "Locale"}, p.Branches); diff != "" {
		t.Errorf("branches mismatch (-want +got):\n%s", diff)
	}
}

func TestSetAndReset(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.SetMacros(ctx, 3, []string{"Ingegneria", "Politica"}); err != nil {
		t.Fatalf("set macros: %v", err)
	}
	if err := s.SetBranches(ctx, 3, []string{"Elettronica"}); err != nil {
		t.Fatalf("set branches: %v", err)
	}

	p, err := s.GetOrCreateUser(ctx, 3)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff([]string{"Ingegneria", "Politica"}, p.Macros); diff != "" {
		t.Errorf("macros mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Elettronica"}, p.Branches); diff != "" {
		t.Errorf("branches mismatch (-want +got):\n%s", diff)
	}

	if err := s.ResetPreferences(ctx, 3); err != nil {
		t.Fatalf("reset: %v", err)
	}
	p, err = s.GetOrCreateUser(ctx, 3)
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if len(p.Macros) != 0 || len(p.Branches) != 0 {
		t.Errorf("reset must clear both sets, got %+v", p)
	}
}

func TestSetAllOnUnknownUserCreatesRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.SetBranches(ctx, 9, []string{"Criptovalute"}); err != nil {
		t.Fatalf("set branches: %v", err)
	}
	p, err := s.GetOrCreateUser(ctx, 9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff([]string{"Criptovalute"}, p.Branches); diff != "" {
		t.Errorf("branches mismatch (-want +got):\n%s", diff)
	}
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for _, id := range []int64{30, 10, 20} {
		if _, err := s.GetOrCreateUser(ctx, id); err != nil {
			t.Fatalf("create %d: %v", id, err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if diff := cmp.Diff([]int64{10, 20, 30}, users); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}
}

func TestSentHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	urls := []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"}

	unsent, err := s.FilterUnsent(ctx, 5, urls)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if diff := cmp.Diff(urls, unsent); diff != "" {
		t.Errorf("all urls should be unsent initially (-want +got):\n%s", diff)
	}

	if err := s.MarkSent(ctx, 5, "https://a.test/2"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	// Marking twice is a no-op.
	if err := s.MarkSent(ctx, 5, "https://a.test/2"); err != nil {
		t.Fatalf("mark sent again: %v", err)
	}

	unsent, err = s.FilterUnsent(ctx, 5, urls)
	if err != nil {
		t.Fatalf("filter after mark: %v", err)
	}
	if diff := cmp.Diff([]string{"https://a.test/1", "https://a.test/3"}, unsent); diff != "" {
		t.Errorf("unsent mismatch (-want +got):\n%s", diff)
	}

	// History is per user.
	unsent, err = s.FilterUnsent(ctx, 6, urls)
	if err != nil {
		t.Fatalf("filter other user: %v", err)
	}
	if diff := cmp.Diff(urls, unsent); diff != "" {
		t.Errorf("other user's history must be independent (-want +got):\n%s", diff)
	}
}

func TestPruneSentBefore(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.MarkSent(ctx, 7, "https://a.test/old"); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	n, err := s.PruneSentBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("prune with old cutoff: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing pruned, got %d", n)
	}

	n, err = s.PruneSentBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("prune with future cutoff: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row pruned, got %d", n)
	}

	unsent, err := s.FilterUnsent(ctx, 7, []string{"https://a.test/old"})
	if err != nil {
		t.Fatalf("filter after prune: %v", err)
	}
	if len(unsent) != 1 {
		t.Errorf("pruned url must be eligible again, got %v", unsent)
	}
}
