package asset

import "testing"

func TestIDValid(t *testing.T) {
	valid := []ID{
		"/Game/Props/Chair.Chair",
		"/Game/A.A",
		"/Plugin/Data/Table.Table_C",
	}
	for _, id := range valid {
		if !id.Valid() {
			t.Fatalf("%q should be valid", id)
		}
	}

	invalid := []ID{
		"",
		"/Game/A",
		"Game/A.A",
		"/.A",
		"/Game/A.",
		"/Game//A.A",
		"/Game/A .A",
		"\\Game\\A.A",
	}
	for _, id := range invalid {
		if id.Valid() {
			t.Fatalf("%q should be invalid", id)
		}
	}
}

func TestIDParts(t *testing.T) {
	id := ID("/Game/Props/Chair.Chair_C")
	if got := id.Package(); got != "/Game/Props/Chair" {
		t.Fatalf("package: %q", got)
	}
	if got := id.ObjectName(); got != "Chair_C" {
		t.Fatalf("object: %q", got)
	}
}

func TestFromPackage(t *testing.T) {
	if got := FromPackage("/Game/Maps/Town"); got != ID("/Game/Maps/Town.Town") {
		t.Fatalf("synthetic id: %q", got)
	}
	if got := FromPackage("relative/path"); got != "" {
		t.Fatalf("expected empty id for unrooted package, got %q", got)
	}
}

func TestDedupe(t *testing.T) {
	in := []ID{
		"/Game/A.A",
		"bad",
		"/Game/B.B",
		"/Game/A.A",
	}
	got := Dedupe(in)
	if len(got) != 2 || got[0] != "/Game/A.A" || got[1] != "/Game/B.B" {
		t.Fatalf("dedupe: %v", got)
	}
}

func TestIsEnginePackage(t *testing.T) {
	if !IsEnginePackage("/Engine/BasicShapes/Cube") {
		t.Fatalf("engine package not detected")
	}
	if !IsEnginePackage("/Script/Engine") {
		t.Fatalf("script package not detected")
	}
	if IsEnginePackage("/Game/Engine/Room") {
		t.Fatalf("content package misdetected")
	}
}
