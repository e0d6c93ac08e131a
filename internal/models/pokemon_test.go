package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPokemon_Lookup(t *testing.T) {
	poison := "Poison"
	p := &Pokemon{
		Number:         1,
		Name:           "Bulbasaur",
		TypeOne:        "Grass",
		TypeTwo:        &poison,
		Total:          318,
		HitPoints:      45,
		Attack:         49,
		Defense:        49,
		SpecialAttack:  65,
		SpecialDefense: 65,
		Speed:          45,
		Generation:     1,
		Legendary:      false,
	}

	tests := []struct {
		field string
		want  interface{}
	}{
		{"number", 1},
		{"name", "Bulbasaur"},
		{"type_one", "Grass"},
		{"type_two", "Poison"},
		{"total", 318},
		{"hit_points", 45},
		{"attack", 49},
		{"defense", 49},
		{"special_attack", 65},
		{"special_defense", 65},
		{"speed", 45},
		{"generation", 1},
		{"legendary", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := p.Lookup(tt.field)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Len(t, FieldNames, len(tests))
}

func TestPokemon_LookupMissing(t *testing.T) {
	p := &Pokemon{Name: "Charmander", TypeOne: "Fire"}

	_, ok := p.Lookup("type_two")
	assert.False(t, ok, "absent optional field")

	_, ok = p.Lookup("wingspan")
	assert.False(t, ok, "unknown field")

	_, ok = p.Lookup("Name")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestPokemon_String(t *testing.T) {
	assert.Equal(t, "#25 Pikachu", (&Pokemon{Number: 25, Name: "Pikachu"}).String())
}
