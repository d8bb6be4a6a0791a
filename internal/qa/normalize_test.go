package qa

import "testing"

func TestCollapseSpace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  a   b\tc\n\nd ", "a b c d"},
		{"single", "single"},
		{"", ""},
		{"\n\t ", ""},
	}
	for _, c := range cases {
		if got := CollapseSpace(c.in); got != c.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeForCompare(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Six Months.", "six months"},
		{"six months", "six months"},
		{"value;  ", "value"},
		{"A  B:", "a b"},
	}
	for _, c := range cases {
		if got := NormalizeForCompare(c.in); got != c.want {
			t.Errorf("NormalizeForCompare(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestContainsNormalized(t *testing.T) {
	hay := "The retention period is   6 months. See appendix."
	if !containsNormalized(hay, "6 months") {
		t.Error("expected plain substring match")
	}
	if !containsNormalized(hay, "6  MONTHS.") {
		t.Error("expected match despite case, spacing and trailing period")
	}
	if containsNormalized(hay, "7 months") {
		t.Error("did not expect a match for absent text")
	}
	if containsNormalized(hay, "") {
		t.Error("empty needle must never match")
	}
	if containsNormalized(hay, " .;:") {
		t.Error("needle that normalizes to empty must never match")
	}
}
