package i18n

import "testing"

func TestTranslate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"login successful", "Connexion réussie"},
		{"folder already exists", "Ce dossier existe déjà"},
		{"recipient not found: 7", "Destinataire introuvable : 7"},
		{"messages marked as read: 12", "Messages marqués comme lus : 12"},
		{"some unknown key", "some unknown key"},
	}

	for _, tt := range tests {
		if got := Translate(tt.input); got != tt.want {
			t.Errorf("Translate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
