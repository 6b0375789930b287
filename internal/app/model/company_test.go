package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "Construtora Silva", "construtora-silva"},
		{"Diacritics stripped", "Construções João & Filhos, Lda.", "construcoes-joao-filhos-lda"},
		{"Uppercase", "OBRAS NORTE", "obras-norte"},
		{"Punctuation runs collapse", "A.B.C. -- Remodelações!!", "a-b-c-remodelacoes"},
		{"Leading and trailing junk trimmed", "  ::Telhados do Porto:: ", "telhados-do-porto"},
		{"Digits kept", "Pinturas 2000", "pinturas-2000"},
		{"Empty", "", ""},
		{"Only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	// Same normalized key regardless of accent or case variants.
	assert.Equal(t, Slugify("Construções Júnior"), Slugify("CONSTRUCOES JUNIOR"))
}
