package catalog

import "testing"

func TestAllElements(t *testing.T) {
	all := All()
	if len(all) != 14 {
		t.Fatalf("expected 14 elements, got %d", len(all))
	}
	seen := map[int]bool{}
	prev := 0
	for _, el := range all {
		if seen[el.Number] {
			t.Fatalf("duplicate element number %d", el.Number)
		}
		seen[el.Number] = true
		if el.Number <= prev {
			t.Fatalf("elements not ordered by number: %d after %d", el.Number, prev)
		}
		prev = el.Number
		if el.Weight < 1.0 || el.Weight > 1.2 {
			t.Fatalf("element %d weight %v outside [1.0, 1.2]", el.Number, el.Weight)
		}
		if len(el.Requirements) == 0 {
			t.Fatalf("element %d has no requirements", el.Number)
		}
		for _, req := range el.Requirements {
			if req.ElementNumber != el.Number {
				t.Fatalf("requirement %s has element number %d, want %d", req.ID, req.ElementNumber, el.Number)
			}
			if req.Category == "" {
				t.Fatalf("requirement %s has empty category", req.ID)
			}
			switch req.Severity {
			case SeverityCritical, SeverityMajor, SeverityMinor:
			default:
				t.Fatalf("requirement %s has unknown severity %q", req.ID, req.Severity)
			}
		}
	}
}

func TestGet(t *testing.T) {
	el, ok := Get(1)
	if !ok {
		t.Fatal("Get(1) not found")
	}
	if el.Name != "Health and Safety Policy" {
		t.Fatalf("Get(1) name = %q", el.Name)
	}
	if _, ok := Get(99); ok {
		t.Fatal("Get(99) should not exist")
	}
}

func TestRequirementByID(t *testing.T) {
	req, ok := RequirementByID("e2-formal")
	if !ok {
		t.Fatal("RequirementByID(e2-formal) not found")
	}
	if req.ElementNumber != 2 {
		t.Fatalf("e2-formal element number = %d, want 2", req.ElementNumber)
	}
	if req.MinCount != 4 {
		t.Fatalf("e2-formal min count = %d, want 4", req.MinCount)
	}
	if _, ok := RequirementByID("nope"); ok {
		t.Fatal("RequirementByID(nope) should not exist")
	}
}

func TestValidElementNumber(t *testing.T) {
	for n := 1; n <= 14; n++ {
		if !ValidElementNumber(n) {
			t.Fatalf("element %d should be valid", n)
		}
	}
	for _, n := range []int{0, -1, 15, 99} {
		if ValidElementNumber(n) {
			t.Fatalf("element %d should be invalid", n)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	a[0].Name = "mutated"
	b := All()
	if b[0].Name == "mutated" {
		t.Fatal("All must return a copy, catalog was mutated")
	}
}
