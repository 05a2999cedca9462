package model

import "testing"

func TestParseCallbackTracks(t *testing.T) {
	raw := []byte(`{"code": 200, "msg": "All generated successfully.", "data": {"callbackType": "complete", "task_id": "t1", "data": [
		{"id": "a", "title": "First", "image_url": "https://img/a.jpg", "stream_audio_url": "https://audio/a.mp3", "prompt": "a song"},
		{"id": "b", "title": "Second", "image_url": "https://img/b.jpg", "stream_audio_url": ""}
	]}}`)

	tracks := ParseCallbackTracks(raw)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}

	if tracks[0].ID != "a" || tracks[0].ImageURL != "https://img/a.jpg" || tracks[0].StreamAudioURL != "https://audio/a.mp3" {
		t.Errorf("snake_case keys not mapped: %+v", tracks[0])
	}
	if !tracks[0].Ready() {
		t.Error("expected first track ready")
	}
	if tracks[1].Ready() {
		t.Error("expected second track not ready without stream audio")
	}
}

func TestParseCallbackTracks_Degenerate(t *testing.T) {
	cases := map[string]string{
		"not json":     `hello`,
		"empty object": `{}`,
		"null":         `null`,
		"failure body": `{"code": 500, "msg": "generation failed", "data": null}`,
	}

	for name, raw := range cases {
		if tracks := ParseCallbackTracks([]byte(raw)); len(tracks) != 0 {
			t.Errorf("%s: expected no tracks, got %+v", name, tracks)
		}
	}
}
