package share

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareURL(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		id      string
		want    string
		wantErr bool
	}{
		{"note", "note", "17", "https://app.quickie.study/notes/17", false},
		{"flashcard set", "flashcard-set", "8", "https://app.quickie.study/flashcards/sets/8", false},
		{"quiz", "quiz", "101", "https://app.quickie.study/quizzes/101", false},
		{"unknown kind", "pomodoro", "1", "", true},
		{"missing id", "note", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShareURL("https://app.quickie.study", tt.kind, tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQRCodePNG(t *testing.T) {
	encoded, err := QRCodePNG("https://app.quickie.study/notes/17")
	require.NoError(t, err)

	png, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4], "output is a PNG")
}
