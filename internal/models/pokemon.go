package models

import "strconv"

// Pokemon is the record carried by every /stream request. It is built once
// by the decoder and treated as read-only afterwards.
type Pokemon struct {
	Number         int     `json:"number"`
	Name           string  `json:"name"`
	TypeOne        string  `json:"type_one"`
	TypeTwo        *string `json:"type_two"`
	Total          int     `json:"total"`
	HitPoints      int     `json:"hit_points"`
	Attack         int     `json:"attack"`
	Defense        int     `json:"defense"`
	SpecialAttack  int     `json:"special_attack"`
	SpecialDefense int     `json:"special_defense"`
	Speed          int     `json:"speed"`
	Generation     int     `json:"generation"`
	Legendary      bool    `json:"legendary"`
}

// FieldNames lists the record fields addressable from rule conditions.
var FieldNames = []string{
	"number", "name", "type_one", "type_two", "total", "hit_points", "attack",
	"defense", "special_attack", "special_defense", "speed", "generation", "legendary",
}

// Lookup returns the value of the named field. Integer fields come back as
// int, text fields as string and legendary as bool. An unknown name or an
// absent type_two reports false.
func (p *Pokemon) Lookup(field string) (interface{}, bool) {
	switch field {
	case "number":
		return p.Number, true
	case "name":
		return p.Name, true
	case "type_one":
		return p.TypeOne, true
	case "type_two":
		if p.TypeTwo == nil {
			return nil, false
		}
		return *p.TypeTwo, true
	case "total":
		return p.Total, true
	case "hit_points":
		return p.HitPoints, true
	case "attack":
		return p.Attack, true
	case "defense":
		return p.Defense, true
	case "special_attack":
		return p.SpecialAttack, true
	case "special_defense":
		return p.SpecialDefense, true
	case "speed":
		return p.Speed, true
	case "generation":
		return p.Generation, true
	case "legendary":
		return p.Legendary, true
	default:
		return nil, false
	}
}

// String identifies the record in logs
func (p *Pokemon) String() string {
	return "#" + strconv.Itoa(p.Number) + " " + p.Name
}
