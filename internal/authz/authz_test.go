package authz

import "testing"

func TestStaticCapabilities(t *testing.T) {
	a := NewStatic([]string{"trainer-1"}, []string{"admin-1"})

	if !a.CanTrain("trainer-1") {
		t.Fatal("trainer-1 should train")
	}
	if a.CanAdminister("trainer-1") {
		t.Fatal("trainer-1 should not administer")
	}
	if !a.CanTrain("admin-1") || !a.CanAdminister("admin-1") {
		t.Fatal("admin-1 should hold both capabilities")
	}
	if a.CanTrain("stranger") || a.CanAdminister("stranger") {
		t.Fatal("stranger should hold no capabilities")
	}
}

func TestAllowAll(t *testing.T) {
	var a AllowAll
	if !a.CanTrain("anyone") || !a.CanAdminister("anyone") {
		t.Fatal("AllowAll must grant everything")
	}
}
