package ptsref

import "testing"

// S4: query = "D ii 20" on field pts_reference returns the DN sutta
// whose pts_start_page = 1 (DN 14), because 20 falls in [1, 54].
func TestSearchByPTSReference_RangeMatch(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	results := ds.Search("D ii 20", FieldPTSReference)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	first := results[0]
	if first.SuttaRef != "DN 14" {
		t.Fatalf("expected first result DN 14, got %s", first.SuttaRef)
	}
	if first.PTSStartPage == nil || *first.PTSStartPage != 1 {
		t.Fatalf("expected pts_start_page=1, got %v", first.PTSStartPage)
	}
}

func TestSearchByPTSReference_ExactStartPageRanksFirst(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	results := ds.Search("D ii 1", FieldPTSReference)
	if len(results) == 0 || results[0].SuttaRef != "DN 14" {
		t.Fatalf("expected DN 14 first, got %+v", results)
	}
}

func TestSearchByPTSReference_TwoPartShape(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	results := ds.Search("Sn 52", FieldPTSReference)
	if len(results) == 0 || results[0].SuttaRef != "Sn 3.1" {
		t.Fatalf("expected Sn 3.1, got %+v", results)
	}
}

func TestSearchByPTSReference_UnparsableFallsBackToText(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	results := ds.Search("D i 1", FieldPTSReference)
	if len(results) == 0 {
		t.Fatal("expected a result for a valid reference")
	}
	results = ds.Search("not a reference", FieldPTSReference)
	if len(results) != 0 {
		t.Fatalf("expected no text match, got %+v", results)
	}
}

func TestSearchByText_Latinized(t *testing.T) {
	ds, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	results := ds.Search("satipatthana", FieldTitlePali)
	if len(results) == 0 || results[0].SuttaRef != "MN 10" {
		t.Fatalf("expected MN 10, got %+v", results)
	}
}
