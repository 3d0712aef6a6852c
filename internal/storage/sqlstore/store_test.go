package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/tndm-coder/fate-ardent-bot/internal/game"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := New(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_LoadEmpty(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "nested", "fate.db"))

	snap, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "participants", len(snap.Participants), 0)
	testutil.AssertEqual(t, "usage", len(snap.Usage), 0)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fate.db")
	s := openTestStore(t, path)

	snap := game.NewSnapshot()
	snap.Ensure("1001", "Mira").ApplyDamage(30)
	snap.Ensure("1002", "Борин")
	u := snap.UsageFor("1001")
	u.Day, u.Dmg, u.Heal = "2026-10-14", 3, 1
	u.Week, u.Resurrection = "2026-W42", 1

	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second handle on the same file sees the committed rows
	reopened := openTestStore(t, path)
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "participants", len(loaded.Participants), 2)
	testutil.AssertEqual(t, "mira", *loaded.Participant("1001"), game.Participant{Name: "Mira", HP: 70})
	testutil.AssertEqual(t, "borin", *loaded.Participant("1002"), game.Participant{Name: "Борин", HP: game.MaxHP})
	testutil.AssertEqual(t, "usage", *loaded.Usage["1001"], *u)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "fate.db"))

	first := game.NewSnapshot()
	first.Ensure("1001", "Mira")
	first.Ensure("1002", "Borin")
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := game.NewSnapshot()
	second.Ensure("1003", "Ysolde")
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "participants", len(loaded.Participants), 1)
	testutil.AssertEqual(t, "name", loaded.Participant("1003").Name, "Ysolde")
}

func TestStore_SaveInvalid(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "fate.db"))

	snap := game.NewSnapshot()
	snap.Ensure("1001", "Mira").HP = 150

	err := s.Save(context.Background(), snap)
	testutil.AssertErrorContains(t, err, "validating snapshot")
}

func TestStore_DropsRowsWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, filepath.Join(t.TempDir(), "fate.db"))

	rows := []string{
		`INSERT INTO participants (identity, name, hp) VALUES ('', 'Nobody', 10)`,
		`INSERT INTO participants (identity, name, hp) VALUES ('1001', 'Mira', 42)`,
		`INSERT INTO usage (identity, day, dmg) VALUES ('', '2026-10-14', 3)`,
	}
	for _, q := range rows {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seeding rows: %v", err)
		}
	}

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "participants", len(snap.Participants), 1)
	testutil.AssertEqual(t, "usage", len(snap.Usage), 0)
	testutil.AssertEqual(t, "mira hp", snap.Participant("1001").HP, 42)

	// The cleaned snapshot saves, which also removes the bad rows
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE identity = ''`).Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	testutil.AssertEqual(t, "bad rows", count, 0)
}
