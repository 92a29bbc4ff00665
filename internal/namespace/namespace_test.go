package namespace

import "testing"

func TestResolveDefault(t *testing.T) {
	if got := Resolve(""); got != Default {
		t.Errorf("Expected %q for empty account, got %q", Default, got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := Resolve("owner@example.com")
	b := Resolve("owner@example.com")
	if a != b {
		t.Errorf("Resolve is not deterministic: %q vs %q", a, b)
	}
	if len(a) != 12 {
		t.Errorf("Expected 12 hex chars, got %d (%q)", len(a), a)
	}
	for _, c := range a {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Non-hex character %q in namespace %q", c, a)
		}
	}
}

func TestResolveDistinctAccounts(t *testing.T) {
	if Resolve("account-1") == Resolve("account-2") {
		t.Error("Different accounts resolved to the same namespace")
	}
	if Resolve("account-1") == Default {
		t.Error("Non-empty account must not resolve to the default namespace")
	}
}
