package media

import "testing"

const sampleProbe = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "ac3", "codec_type": "audio", "channels": 6, "tags": {"language": "ENG"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "channels": 2},
    {"index": 3, "codec_name": "hdmv_pgs_subtitle", "codec_type": "subtitle", "tags": {"language": "eng"}},
    {"index": 4, "codec_type": "attachment"}
  ],
  "format": {"filename": "movie.mkv", "nb_streams": 5, "duration": "5943.2", "size": "28051996672", "format_name": "matroska"}
}`

func TestParseProbeTracks(t *testing.T) {
	result, err := ParseProbe([]byte(sampleProbe))
	if err != nil {
		t.Fatalf("ParseProbe returned error: %v", err)
	}
	tracks := result.Tracks()
	if len(tracks) != 4 {
		t.Fatalf("expected 4 tracks (attachment skipped), got %d", len(tracks))
	}
	if tracks[0].Kind != KindVideo || tracks[0].Width != 1920 {
		t.Fatalf("unexpected video track: %+v", tracks[0])
	}
	if tracks[1].Language != "eng" {
		t.Fatalf("expected lowercased language, got %q", tracks[1].Language)
	}
	if tracks[2].Language != "" || tracks[2].Channels != 2 {
		t.Fatalf("unexpected untagged audio: %+v", tracks[2])
	}
	if tracks[3].Kind != KindSubtitle {
		t.Fatalf("unexpected subtitle track: %+v", tracks[3])
	}
	if result.Format.SizeBytes() != 28051996672 {
		t.Fatalf("unexpected size: %d", result.Format.SizeBytes())
	}
}

func TestParseProbeRejectsGarbage(t *testing.T) {
	if _, err := ParseProbe([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
