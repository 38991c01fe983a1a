package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/woozymasta/a2sim/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRecordAggregates(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now().Truncate(time.Second)

	events := []models.QueryEvent{
		{Time: now.Add(-time.Minute), IP: "10.0.0.1", Kind: "A2S_INFO", Country: "DE", Bytes: 9, Challenged: true},
		{Time: now, IP: "10.0.0.1", Kind: "A2S_INFO", Bytes: 80},
		{Time: now, IP: "10.0.0.2", Kind: "A2S_PLAYER", Country: "US", Bytes: 40},
	}
	for _, ev := range events {
		if err := repo.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}

	var info models.ClientStat
	for _, s := range stats {
		if s.IP == "10.0.0.1" {
			info = s
		}
	}

	if info.Requests != 2 || info.Challenges != 1 || info.BytesSent != 89 {
		t.Errorf("unexpected counters: %+v", info)
	}
	if info.Country != "DE" {
		t.Errorf("country = %q, want DE kept from first event", info.Country)
	}
	if !info.LastSeen.Equal(now.UTC()) || !info.FirstSeen.Equal(now.Add(-time.Minute).UTC()) {
		t.Errorf("unexpected timestamps: first %s last %s", info.FirstSeen, info.LastSeen)
	}
}

func TestPrune(t *testing.T) {
	repo := newTestRepo(t)
	now := time.Now()

	_ = repo.Record(models.QueryEvent{Time: now.Add(-48 * time.Hour), IP: "old", Kind: "A2S_RULES"})
	_ = repo.Record(models.QueryEvent{Time: now, IP: "new", Kind: "A2S_RULES"})

	deleted, err := repo.Prune(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	stats, _ := repo.Stats()
	if len(stats) != 1 || stats[0].IP != "new" {
		t.Errorf("unexpected remaining rows: %+v", stats)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	for i := 0; i < 2; i++ {
		repo, err := New(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		_ = repo.Close()
	}
}
