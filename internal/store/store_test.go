package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/demo"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/engine"
)

func newRecord(t *testing.T, id string, created time.Time) Record {
	t.Helper()
	s := demo.Scan()
	s.ScanID = id
	report, err := engine.Analyze(s)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return Record{ID: id, CreatedAt: created, Scan: s, Report: report}
}

// stores returns every implementation under test, each freshly opened.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLite(filepath.Join(t.TempDir(), "pcdiag.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(t, "scan-1", created)
			if err := st.Save(ctx, rec); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := st.Get(ctx, "scan-1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
			}
			if diff := cmp.Diff(rec.Report, got.Report, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("report round trip (-want +got):\n%s", diff)
			}
			if got.Scan.CPU.ModelName != rec.Scan.CPU.ModelName {
				t.Errorf("scan cpu = %q", got.Scan.CPU.ModelName)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get err = %v, want ErrNotFound", err)
			}
			if _, err := st.Latest(ctx); !errors.Is(err, ErrNotFound) {
				t.Errorf("Latest err = %v, want ErrNotFound", err)
			}
			list, err := st.List(ctx, 10)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(list) != 0 {
				t.Errorf("List = %v, want empty", list)
			}
		})
	}
}

func TestStoreLatestAndList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"a", "c", "b"} {
				if err := st.Save(ctx, newRecord(t, id, base.Add(time.Duration(i)*time.Minute))); err != nil {
					t.Fatalf("Save %s: %v", id, err)
				}
			}

			latest, err := st.Latest(ctx)
			if err != nil {
				t.Fatalf("Latest: %v", err)
			}
			if latest.ID != "b" {
				t.Errorf("Latest = %q, want b", latest.ID)
			}

			list, err := st.List(ctx, 2)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, s := range list {
				ids = append(ids, s.ID)
			}
			if diff := cmp.Diff([]string{"b", "c"}, ids); diff != "" {
				t.Errorf("List ids (-want +got):\n%s", diff)
			}
			if list[0].Grade == "" || list[0].CPU == "" {
				t.Errorf("summary not populated: %+v", list[0])
			}
		})
	}
}

func TestStoreSaveKeepsExisting(t *testing.T) {
	ctx := context.Background()
	first := time.Unix(100, 0).UTC()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			rec := newRecord(t, "same", first)
			if err := st.Save(ctx, rec); err != nil {
				t.Fatal(err)
			}
			dup := newRecord(t, "same", time.Unix(200, 0).UTC())
			dup.Report.Score.Total = 1
			err := st.Save(ctx, dup)
			if !errors.Is(err, ErrExists) {
				t.Fatalf("second Save err = %v, want ErrExists", err)
			}

			got, err := st.Get(ctx, "same")
			if err != nil {
				t.Fatal(err)
			}
			if !got.CreatedAt.Equal(first) || got.Report.Score.Total != rec.Report.Score.Total {
				t.Errorf("stored record changed: created %v, score %d", got.CreatedAt, got.Report.Score.Total)
			}
			list, err := st.List(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 || list[0].Score != rec.Report.Score.Total {
				t.Errorf("List = %+v", list)
			}
		})
	}
}

func TestStoreRejectsEmptyID(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Save(context.Background(), Record{}); err == nil {
				t.Error("expected error for empty id")
			}
		})
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pcdiag.db")
	ctx := context.Background()

	st, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(ctx, newRecord(t, "persisted", time.Now().UTC())); err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if _, err := st.Get(ctx, "persisted"); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestOpenEmptyPathIsMemory(t *testing.T) {
	st, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*MemoryStore); !ok {
		t.Errorf("Open(\"\") = %T, want *MemoryStore", st)
	}
}
