package deps

import "testing"

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "present on any sane system"},
		{Name: "Ghost", Command: "ripsharp-definitely-not-installed", Description: "never present"},
		{Name: "Blank", Command: "  "},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected sh to be available: %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatal("expected ghost binary to be missing")
	}
	if statuses[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[2].Detail)
	}

	missing := Missing(statuses)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing, got %d", len(missing))
	}
}

func TestRequiredHonorsOverrides(t *testing.T) {
	reqs := Required("", "/opt/ffmpeg/bin/ffmpeg", "")
	if reqs[0].Command != "makemkvcon" {
		t.Fatalf("expected default makemkvcon, got %q", reqs[0].Command)
	}
	if reqs[1].Command != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected override, got %q", reqs[1].Command)
	}
}
