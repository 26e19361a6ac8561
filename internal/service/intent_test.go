package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContactIntent(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     bool
	}{
		{
			name:     "keyword plus verb",
			question: "Me gustaría agendar una reunión",
			want:     true,
		},
		{
			name:     "cv question without intent",
			question: "¿Qué lenguajes sabes?",
			want:     false,
		},
		{
			name:     "keyword alone is not intent",
			question: "contacto",
			want:     false,
		},
		{
			name:     "verb alone is not intent",
			question: "quiero saber más de su experiencia",
			want:     false,
		},
		{
			name:     "accents are normalized",
			question: "QUISIERA una REUNIÓN con él",
			want:     true,
		},
		{
			name:     "whatsapp keyword",
			question: "puedes pasarme su whatsapp",
			want:     true,
		},
		{
			name:     "phone keyword with verb",
			question: "necesito su teléfono",
			want:     true,
		},
		{
			name:     "empty message",
			question: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContactIntent(tt.question))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "reunion", normalizeText("Reunión"))
	assert.Equal(t, "telefono celular", normalizeText("Teléfono CELULAR"))
	assert.Equal(t, "", normalizeText(""))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt("Enrique trabajó 5 años con Go.")

	assert.Contains(t, prompt, "Enrique Lazo Bello")
	assert.Contains(t, prompt, "Información del CV:\nEnrique trabajó 5 años con Go.")
}
