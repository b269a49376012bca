package deps

import "testing"

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Ghost", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Blank", Command: "   "},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if statuses[0].Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
	if statuses[1].Available || statuses[1].Detail != "command not configured" {
		t.Fatalf("unexpected blank command status: %+v", statuses[1])
	}
}

func TestCheckBinariesResolvesPath(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "Shell", Command: "sh"}})
	if !statuses[0].Available {
		t.Skip("sh not on PATH")
	}
	if statuses[0].Command == "sh" {
		t.Fatal("expected resolved absolute path")
	}
}
