package makemkv

import "testing"

func TestDecodeProgressValueBands(t *testing.T) {
	cases := []struct {
		line string
		want float64
	}{
		{"PRGV:75", 75},
		{"PRGV:50000", 50},
		{"PRGV:100000", 100},
		{"PRGV:10000", 100},
		{"PRGV:20000", 20},
		{"PRGV:5000,26214,65536", 50},
		{"PRGV:0", 0},
		{"PRGV:999999", 100},
		{"PRGV:-5", 0},
	}
	for _, tc := range cases {
		event := Decode(tc.line)
		if event.Kind != EventProgress {
			t.Fatalf("%s: expected progress event, got kind %d", tc.line, event.Kind)
		}
		if event.Percent != tc.want {
			t.Fatalf("%s: expected %.1f, got %.1f", tc.line, tc.want, event.Percent)
		}
	}
}

func TestDecodeProgressValueMonotoneWithinBands(t *testing.T) {
	bands := [][]string{
		{"PRGV:10", "PRGV:55", "PRGV:100"},
		{"PRGV:150", "PRGV:5000", "PRGV:9900"},
		{"PRGV:100000", "PRGV:550000", "PRGV:990000"},
	}
	for _, band := range bands {
		last := -1.0
		for _, line := range band {
			event := Decode(line)
			if event.Percent < last {
				t.Fatalf("%s: percent %.1f regressed below %.1f", line, event.Percent, last)
			}
			if event.Percent < 0 || event.Percent > 100 {
				t.Fatalf("%s: percent %.1f out of range", line, event.Percent)
			}
			last = event.Percent
		}
	}
}

func TestDecodeCaption(t *testing.T) {
	event := Decode(`PRGC:5017,0,"Saving to MKV file"`)
	if event.Kind != EventCaption {
		t.Fatalf("expected caption event, got kind %d", event.Kind)
	}
	if event.Text != "Saving to MKV file" {
		t.Fatalf("unexpected caption: %q", event.Text)
	}

	event = Decode(`PRGT:5016,0,"Opening DVD disc"`)
	if event.Kind != EventCaption || event.Text != "Opening DVD disc" {
		t.Fatalf("unexpected total caption: %+v", event)
	}
}

func TestDecodeMessageSubstitutesParameters(t *testing.T) {
	event := Decode(`MSG:3025,0,2,"Saving title %1 of %2","1","20"`)
	if event.Kind != EventMessage {
		t.Fatalf("expected message event, got kind %d", event.Kind)
	}
	if event.Text != "Saving title 1 of 20" {
		t.Fatalf("unexpected message: %q", event.Text)
	}
}

func TestDecodeMessageWithQuotedCommas(t *testing.T) {
	event := Decode(`MSG:1005,0,1,"Using device %1","BD-RE ASUS, rev 1.0"`)
	if event.Kind != EventMessage {
		t.Fatalf("expected message event, got kind %d", event.Kind)
	}
	if event.Text != "Using device BD-RE ASUS, rev 1.0" {
		t.Fatalf("unexpected message: %q", event.Text)
	}
}

func TestDecodeMalformedMessageFallsBack(t *testing.T) {
	for _, line := range []string{
		"MSG:3025,0",
		`MSG:3025,0,1,"unterminated`,
	} {
		event := Decode(line)
		if event.Kind != EventPassthrough {
			t.Fatalf("%s: expected passthrough, got kind %d", line, event.Kind)
		}
		if event.Text != line {
			t.Fatalf("%s: expected raw line, got %q", line, event.Text)
		}
	}
}

func TestDecodeSuppressesStructuralRecords(t *testing.T) {
	for _, line := range []string{
		"TCOUNT:12",
		`DRV:0,2,999,12,"BD-ROM","MY_DISC","/dev/sr0"`,
		`CINFO:2,0,"MY DISC"`,
		`TINFO:0,9,0,"1:39:03"`,
		`SINFO:0,1,3,4353,"eng"`,
	} {
		event := Decode(line)
		if event.Kind != EventSilent {
			t.Fatalf("%s: expected silent, got kind %d", line, event.Kind)
		}
	}
}

func TestDecodeUnknownLinePassesThrough(t *testing.T) {
	line := "Current action: Analyzing seamless segments"
	event := Decode(line)
	if event.Kind != EventPassthrough || event.Text != line {
		t.Fatalf("unexpected event: %+v", event)
	}
}
