// Package decoder turns raw /stream bodies into models.Pokemon records.
//
// JSON is the default encoding. Bodies sent with Content-Type
// application/x-protobuf (or application/protobuf) are read as the
// protobuf Pokemon message:
//
//	message Pokemon {
//	  uint32 number = 1;
//	  string name = 2;
//	  string type_one = 3;
//	  string type_two = 4;
//	  uint32 total = 5;
//	  uint32 hit_points = 6;
//	  uint32 attack = 7;
//	  uint32 defense = 8;
//	  uint32 special_attack = 9;
//	  uint32 special_defense = 10;
//	  uint32 speed = 11;
//	  uint32 generation = 12;
//	  bool legendary = 13;
//	}
package decoder

import (
	"fmt"
	"mime"

	"pokeproxy/internal/common/validation"
	"pokeproxy/internal/models"
)

// Content types understood by Decode
const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
)

// Decode builds a record from body. Anything other than a protobuf media
// type is read as JSON. All failures wrap ErrDecode.
func Decode(body []byte, contentType string) (*models.Pokemon, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyBody)
	}

	var (
		raw *rawPokemon
		err error
	)
	if isProtobuf(contentType) {
		raw, err = decodeProtobuf(body)
	} else {
		raw, err = decodeJSON(body)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := validation.ValidateStruct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return raw.toModel(), nil
}

func isProtobuf(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == ContentTypeProtobuf || mediaType == "application/protobuf"
}

// rawPokemon holds a decoded body before presence checks. Pointers tell a
// missing field apart from a zero value.
type rawPokemon struct {
	Number         *int    `json:"number" validate:"required,min=0"`
	Name           *string `json:"name" validate:"required"`
	TypeOne        *string `json:"type_one" validate:"required"`
	TypeTwo        *string `json:"type_two"`
	Total          *int    `json:"total" validate:"required,min=0"`
	HitPoints      *int    `json:"hit_points" validate:"required,min=0"`
	Attack         *int    `json:"attack" validate:"required,min=0"`
	Defense        *int    `json:"defense" validate:"required,min=0"`
	SpecialAttack  *int    `json:"special_attack" validate:"required,min=0"`
	SpecialDefense *int    `json:"special_defense" validate:"required,min=0"`
	Speed          *int    `json:"speed" validate:"required,min=0"`
	Generation     *int    `json:"generation" validate:"required,min=0"`
	Legendary      *bool   `json:"legendary" validate:"required"`
}

func (r *rawPokemon) toModel() *models.Pokemon {
	p := &models.Pokemon{
		Number:         *r.Number,
		Name:           *r.Name,
		TypeOne:        *r.TypeOne,
		Total:          *r.Total,
		HitPoints:      *r.HitPoints,
		Attack:         *r.Attack,
		Defense:        *r.Defense,
		SpecialAttack:  *r.SpecialAttack,
		SpecialDefense: *r.SpecialDefense,
		Speed:          *r.Speed,
		Generation:     *r.Generation,
		Legendary:      *r.Legendary,
	}
	if r.TypeTwo != nil {
		typeTwo := *r.TypeTwo
		p.TypeTwo = &typeTwo
	}
	return p
}
