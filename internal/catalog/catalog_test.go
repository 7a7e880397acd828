package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_HasBuiltins(t *testing.T) {
	c := New()
	all := c.All()
	if len(all) == 0 {
		t.Fatal("catalog must ship with built-in datasets")
	}

	ref, ok := c.Lookup("QNA")
	if !ok {
		t.Fatal("expected QNA in built-ins")
	}
	if ref.Agency == "" || ref.FlowID == "" || ref.Version == "" {
		t.Errorf("QNA missing canonical identifiers: %+v", ref)
	}

	// All is sorted by id.
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Errorf("All() not sorted: %q before %q", all[i-1].ID, all[i].ID)
		}
	}
}

func TestLookup_Unknown(t *testing.T) {
	c := New()
	if _, ok := c.Lookup("UNKNOWN_ID"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	c := New()

	for _, text := range []string{"unemployment", "UNEMPLOYMENT", "Unemp"} {
		matches := c.Search(text)
		found := false
		for _, m := range matches {
			if m.ID == "UNEMP" {
				found = true
			}
		}
		if !found {
			t.Errorf("Search(%q) should find UNEMP, got %+v", text, matches)
		}
	}

	if got := c.Search("definitely-not-a-dataset"); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestSearch_MatchesID(t *testing.T) {
	c := New()
	matches := c.Search("qna")
	if len(matches) != 1 || matches[0].ID != "QNA" {
		t.Errorf("Search(qna) = %+v, want the QNA entry", matches)
	}
}

func TestLoadFile_MergesOverBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	override := `[
		{"id": "QNA", "agency": "OECD.SDD.NAD", "flowId": "DSD_NAMAIN1@DF_QNA_EXP", "version": "2.0", "name": "QNA (expenditure)"},
		{"id": "CUSTOM", "agency": "OECD.CFE", "flowId": "DSD_CUSTOM@DF_CUSTOM", "name": "Custom flow"},
		{"id": "", "agency": "X", "flowId": "Y"},
		{"id": "NO_AGENCY", "flowId": "Z"}
	]`
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	c := New()
	before := len(c.All())
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	qna, _ := c.Lookup("QNA")
	if qna.Version != "2.0" || qna.FlowID != "DSD_NAMAIN1@DF_QNA_EXP" {
		t.Errorf("override should replace the built-in, got %+v", qna)
	}

	custom, ok := c.Lookup("CUSTOM")
	if !ok {
		t.Fatal("new entry should be added")
	}
	if custom.Version != "1.0" {
		t.Errorf("missing version should default to 1.0, got %q", custom.Version)
	}

	if _, ok := c.Lookup("NO_AGENCY"); ok {
		t.Error("entries without an agency must be skipped")
	}
	if got := len(c.All()); got != before+1 {
		t.Errorf("expected exactly one new entry, went from %d to %d", before, got)
	}
}

func TestLoadFile_BadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := New()
	if err := c.LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
	if err := c.LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected read error")
	}
	// A failed load never empties the catalog.
	if len(c.All()) == 0 {
		t.Error("built-ins must survive a failed load")
	}
}
