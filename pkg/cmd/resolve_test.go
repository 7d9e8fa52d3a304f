package cmd

import "testing"

func TestParseNoteID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"#7", 7, false},
		{" 3 ", 3, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseNoteID(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseNoteID(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseNoteID(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}
}

func TestConfirmWithYesSkipsPrompt(t *testing.T) {
	ok, err := Confirm("Delete?", true)
	if err != nil || !ok {
		t.Fatalf("expected confirmation, got %v %v", ok, err)
	}
}
