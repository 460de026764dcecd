package util

import "testing"

func TestParseProbeOutput(t *testing.T) {
	out := `{
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 1280, "height": 720}
		],
		"format": {"duration": "93.500000", "size": "1048576", "format_name": "mov,mp4,m4a"}
	}`

	info, err := parseProbeOutput(out)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.Duration != 93.5 {
		t.Fatalf("expected duration 93.5, got %v", info.Duration)
	}
	if info.Width != 1280 || info.Height != 720 {
		t.Fatalf("expected 1280x720, got %dx%d", info.Width, info.Height)
	}
	if info.Format != "mov" {
		t.Fatalf("expected format mov, got %s", info.Format)
	}
	if info.Size != 1048576 {
		t.Fatalf("expected size 1048576, got %d", info.Size)
	}
}

func TestParseProbeOutputMissingFields(t *testing.T) {
	info, err := parseProbeOutput(`{"streams": [], "format": {}}`)
	if err != nil {
		t.Fatalf("parseProbeOutput: %v", err)
	}
	if info.Duration != 0 || info.Format != "unknown" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	if _, err := parseProbeOutput("not json"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}
