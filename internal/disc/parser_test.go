package disc

import "testing"

const sampleInfo = `
MSG:1005,0,1,"MakeMKV v1.17.7 linux(x64-release) started","%1 started","MakeMKV v1.17.7 linux(x64-release)"
DRV:0,2,999,12,"BD-ROM HL-DT-ST","MY_MOVIE","/dev/sr0"
TCOUNT:2
CINFO:1,6209,"Blu-ray disc"
CINFO:2,0,"MY MOVIE"
TINFO:0,2,0,"Main Feature"
TINFO:0,8,0,"24"
TINFO:0,9,0,"1:39:03"
TINFO:0,10,0,"28051996672"
SINFO:0,0,1,6201,"Video"
SINFO:0,0,19,0,"1920x1080"
SINFO:0,1,1,6202,"Audio"
SINFO:0,1,3,0,"eng"
SINFO:0,1,14,0,"8"
SINFO:0,1,30,0,"Main Audio"
SINFO:0,2,1,6203,"Subtitles"
SINFO:0,2,3,0,"eng"
TINFO:1,2,0,"Extras"
TINFO:1,9,0,"0:22:10"
`

func TestParseInfo(t *testing.T) {
	result, err := parseInfo([]byte(sampleInfo))
	if err != nil {
		t.Fatalf("parseInfo returned error: %v", err)
	}
	if result.DiscName != "MY MOVIE" {
		t.Fatalf("unexpected disc name: %q", result.DiscName)
	}
	if len(result.Titles) != 2 {
		t.Fatalf("expected 2 titles, got %d", len(result.Titles))
	}

	main := result.Titles[0]
	if main.Name != "Main Feature" || main.Duration != 5943 || main.Chapters != 24 {
		t.Fatalf("unexpected main title: %+v", main)
	}
	if main.SizeBytes != 28051996672 {
		t.Fatalf("unexpected size: %d", main.SizeBytes)
	}
	if len(main.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(main.Tracks))
	}
	if main.Tracks[0].Kind != TrackVideo || main.Tracks[0].Width != 1920 || main.Tracks[0].Height != 1080 {
		t.Fatalf("unexpected video track: %+v", main.Tracks[0])
	}
	if main.Tracks[1].Kind != TrackAudio || main.Tracks[1].Language != "eng" || main.Tracks[1].Channels != 8 {
		t.Fatalf("unexpected audio track: %+v", main.Tracks[1])
	}
	if main.Tracks[1].Name != "Main Audio" {
		t.Fatalf("unexpected audio name: %q", main.Tracks[1].Name)
	}
	if main.Tracks[2].Kind != TrackSubtitle {
		t.Fatalf("unexpected subtitle track: %+v", main.Tracks[2])
	}

	if result.Titles[1].Duration != 1330 {
		t.Fatalf("unexpected extras duration: %d", result.Titles[1].Duration)
	}
}

func TestParseInfoEmptyOutput(t *testing.T) {
	if _, err := parseInfo([]byte("   \n")); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestParseDurationMalformed(t *testing.T) {
	for _, value := range []string{"", "90", "1:xx:00", "1:2"} {
		if got := parseDuration(value); got != 0 {
			t.Fatalf("parseDuration(%q) = %d, want 0", value, got)
		}
	}
	if got := parseDuration("0:45:30"); got != 2730 {
		t.Fatalf("parseDuration = %d, want 2730", got)
	}
}
