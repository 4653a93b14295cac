package knowledge

import "testing"

func TestSubstringScanner(t *testing.T) {
	tests := []struct {
		content, item string
		want          bool
	}{
		{"She whispered the name of the Killer.", "killer", true},
		{"The ozone smelled sharp.", "Oz", true},
		{"Nothing to see here.", "vault", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := (SubstringScanner{}).ContainsItem(tt.content, tt.item); got != tt.want {
			t.Errorf("ContainsItem(%q, %q) = %v, want %v", tt.content, tt.item, got, tt.want)
		}
	}
}

func TestWordScanner(t *testing.T) {
	tests := []struct {
		content, item string
		want          bool
	}{
		{"The ozone smelled sharp.", "Oz", false},
		{"We are off to see Oz.", "oz", true},
		{"OZ, again", "oz", true},
		{"ozone and then Oz", "oz", true},
		{"killer's identity was clear", "killer's identity", true},
		{"Agent7 reported", "agent", false},
		{"café", "caf", false},
		{"", "x", false},
	}
	for _, tt := range tests {
		if got := (WordScanner{}).ContainsItem(tt.content, tt.item); got != tt.want {
			t.Errorf("ContainsItem(%q, %q) = %v, want %v", tt.content, tt.item, got, tt.want)
		}
	}
}

func TestScannerByName(t *testing.T) {
	for _, name := range []string{"", ScannerSubstring} {
		s, err := ScannerByName(name)
		if err != nil {
			t.Fatalf("ScannerByName(%q): %v", name, err)
		}
		if _, ok := s.(SubstringScanner); !ok {
			t.Errorf("ScannerByName(%q) = %T", name, s)
		}
	}
	s, err := ScannerByName(ScannerWord)
	if err != nil {
		t.Fatalf("ScannerByName(word): %v", err)
	}
	if _, ok := s.(WordScanner); !ok {
		t.Errorf("ScannerByName(word) = %T", s)
	}
	if _, err := ScannerByName("semantic"); err == nil {
		t.Error("expected error for unknown scanner")
	}
}
