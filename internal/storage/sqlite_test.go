package storage

import (
	"errors"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBlueprintCRUD(t *testing.T) {
	s := testStore(t)

	bp := Blueprint{
		ID:          "bp-1",
		Title:       "Go service baseline",
		Description: "Conventions for Go services",
		Content:     "# [[NAME]]\n",
		Platform:    "claude",
		Author:      "Ada",
		Defaults:    `{"NAME":"svc"}`,
		PriceCents:  499,
		Published:   true,
	}
	if err := s.SaveBlueprint(bp); err != nil {
		t.Fatalf("SaveBlueprint: %v", err)
	}

	got, err := s.GetBlueprint("bp-1")
	if err != nil {
		t.Fatalf("GetBlueprint: %v", err)
	}
	if got.Title != bp.Title || got.Content != bp.Content || got.PriceCents != 499 || !got.Published {
		t.Errorf("GetBlueprint = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	// Upsert keeps the id and changes the payload.
	bp.Title = "Go service baseline v2"
	if err := s.SaveBlueprint(bp); err != nil {
		t.Fatalf("SaveBlueprint upsert: %v", err)
	}
	got, _ = s.GetBlueprint("bp-1")
	if got.Title != "Go service baseline v2" {
		t.Errorf("upsert did not apply: %q", got.Title)
	}

	list, err := s.ListBlueprints(10, 0)
	if err != nil {
		t.Fatalf("ListBlueprints: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("ListBlueprints len = %d", len(list))
	}

	if err := s.DeleteBlueprint("bp-1"); err != nil {
		t.Fatalf("DeleteBlueprint: %v", err)
	}
	if _, err := s.GetBlueprint("bp-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBlueprint after delete: %v, want ErrNotFound", err)
	}
	if err := s.DeleteBlueprint("bp-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteBlueprint missing: %v, want ErrNotFound", err)
	}
}

func TestListBlueprintsPagination(t *testing.T) {
	s := testStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveBlueprint(Blueprint{ID: id, Title: id}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := s.ListBlueprints(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("first page len = %d, want 2", len(page))
	}
	rest, err := s.ListBlueprints(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 {
		t.Errorf("second page len = %d, want 1", len(rest))
	}
}

func TestVariables(t *testing.T) {
	s := testStore(t)

	if err := s.SetVariable("ONCALL", "@team"); err != nil {
		t.Fatalf("SetVariable: %v", err)
	}
	if err := s.SetVariable("ONCALL", "@newteam"); err != nil {
		t.Fatalf("SetVariable overwrite: %v", err)
	}

	v, err := s.GetVariable("ONCALL")
	if err != nil {
		t.Fatalf("GetVariable: %v", err)
	}
	if v != "@newteam" {
		t.Errorf("GetVariable = %q", v)
	}

	if _, err := s.GetVariable("MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVariable missing: %v, want ErrNotFound", err)
	}

	s.SetVariable("ENV", "prod")
	all, err := s.GetAllVariables()
	if err != nil {
		t.Fatalf("GetAllVariables: %v", err)
	}
	if len(all) != 2 || all["ENV"] != "prod" {
		t.Errorf("GetAllVariables = %v", all)
	}

	vars, err := s.ListVariables()
	if err != nil {
		t.Fatalf("ListVariables: %v", err)
	}
	if len(vars) != 2 {
		t.Errorf("ListVariables len = %d", len(vars))
	}

	if err := s.DeleteVariable("ENV"); err != nil {
		t.Fatalf("DeleteVariable: %v", err)
	}
	if err := s.DeleteVariable("ENV"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteVariable missing: %v, want ErrNotFound", err)
	}
}

func TestProfileKeys(t *testing.T) {
	s := testStore(t)

	if err := s.SetProfileKey("persona", "backend"); err != nil {
		t.Fatalf("SetProfileKey: %v", err)
	}
	v, err := s.GetProfileKey("persona")
	if err != nil || v != "backend" {
		t.Errorf("GetProfileKey = %q, %v", v, err)
	}

	s.SetProfileKey("persona", "devops")
	s.SetProfileKey("display_name", "Ada")
	all, err := s.GetAllProfileKeys()
	if err != nil {
		t.Fatalf("GetAllProfileKeys: %v", err)
	}
	if all["persona"] != "devops" || all["display_name"] != "Ada" {
		t.Errorf("GetAllProfileKeys = %v", all)
	}
}

func TestPurchases(t *testing.T) {
	s := testStore(t)
	s.SaveBlueprint(Blueprint{ID: "bp-1", Title: "t"})

	if err := s.RecordPurchase(Purchase{ID: "p-1", BlueprintID: "bp-1", PriceCents: 499}); err != nil {
		t.Fatalf("RecordPurchase: %v", err)
	}
	list, err := s.ListPurchases(10)
	if err != nil {
		t.Fatalf("ListPurchases: %v", err)
	}
	if len(list) != 1 || list[0].BlueprintID != "bp-1" {
		t.Errorf("ListPurchases = %+v", list)
	}
}

func TestGetOrCreateAPIToken(t *testing.T) {
	s := testStore(t)

	calls := 0
	gen := func() string {
		calls++
		return "tok-abc"
	}

	first, err := s.GetOrCreateAPIToken(gen)
	if err != nil {
		t.Fatalf("GetOrCreateAPIToken: %v", err)
	}
	if first != "tok-abc" || calls != 1 {
		t.Errorf("first call = %q, calls = %d", first, calls)
	}

	second, err := s.GetOrCreateAPIToken(gen)
	if err != nil {
		t.Fatalf("GetOrCreateAPIToken: %v", err)
	}
	if second != "tok-abc" || calls != 1 {
		t.Errorf("token not stable: %q, calls = %d", second, calls)
	}
}
