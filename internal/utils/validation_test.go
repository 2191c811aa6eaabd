package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCleanCardFace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain text", input: "2+2", want: "2+2"},
		{name: "trimmed", input: "   what is 7*6?  ", want: "what is 7*6?"},
		{name: "script removed", input: `<script>alert(1)</script>x^2`, want: "x^2"},
		{name: "sup kept", input: "x<sup>2</sup>", want: "x<sup>2</sup>"},
		{name: "comparison operators kept", input: "Is 3 < 5 & 7 > 2?", want: "Is 3 < 5 & 7 > 2?"},
		{name: "quotes kept", input: `what is "x" in 2x = 4's half?`, want: `what is "x" in 2x = 4's half?`},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: " \t\n ", wantErr: true},
		{name: "only unsafe markup", input: "<script>alert(1)</script>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanCardFace("question", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanCardFace(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var verr ValidationError
				if !errors.As(err, &verr) || verr.Field != "question" {
					t.Errorf("CleanCardFace(%q) error = %#v, want ValidationError on question", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CleanCardFace(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateSessionIDIsUnique(t *testing.T) {
	a, b := GenerateSessionID(), GenerateSessionID()
	if a == b {
		t.Fatalf("GenerateSessionID() returned %q twice", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("GenerateSessionID() = %q is not a UUID: %v", a, err)
	}
}
