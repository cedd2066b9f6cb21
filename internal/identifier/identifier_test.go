package identifier

import "testing"

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{
			name:   "received opus reference",
			input:  "received_abcd1234-ef56-7890-ab12-34567890cdef.opus",
			wantID: "abcd1234-ef56-7890-ab12-34567890cdef",
			wantOK: true,
		},
		{
			name:   "bare converted name",
			input:  "abcd1234-ef56-7890-ab12-34567890cdef.mp3",
			wantID: "abcd1234-ef56-7890-ab12-34567890cdef",
			wantOK: true,
		},
		{
			name:   "uppercase hex folds to lowercase",
			input:  "SENT_ABCD1234-EF56-7890-AB12-34567890CDEF.OPUS",
			wantID: "abcd1234-ef56-7890-ab12-34567890cdef",
			wantOK: true,
		},
		{
			name:   "no identifier",
			input:  "voice_note_42.mp3",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
		{
			name:   "malformed uuid shape",
			input:  "audio_zzzz1234-ef56-7890-ab12-34567890cdef.opus",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := Extract(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if ok && id != tc.wantID {
				t.Errorf("Extract(%q) = %q, want %q", tc.input, id, tc.wantID)
			}
		})
	}
}

func TestExtractPicksFirstToken(t *testing.T) {
	input := "a1b2c3d4-0000-4000-8000-000000000001_a1b2c3d4-0000-4000-8000-000000000002.mp3"
	id, ok := Extract(input)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if id != "a1b2c3d4-0000-4000-8000-000000000001" {
		t.Errorf("expected first token, got %q", id)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("  AUDIO.MP3 ") != "audio.mp3" {
		t.Errorf("Normalize should trim and fold case")
	}
}
