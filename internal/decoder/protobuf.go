package decoder

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldNumber protowire.Number = iota + 1
	fieldName
	fieldTypeOne
	fieldTypeTwo
	fieldTotal
	fieldHitPoints
	fieldAttack
	fieldDefense
	fieldSpecialAttack
	fieldSpecialDefense
	fieldSpeed
	fieldGeneration
	fieldLegendary
)

// decodeProtobuf follows proto3 rules: scalars missing on the wire are zero,
// and an empty type_two is treated as absent. Unknown fields are skipped.
func decodeProtobuf(body []byte) (*rawPokemon, error) {
	var (
		ints    [fieldGeneration + 1]int
		strs    [fieldTypeTwo + 1]string
		legend  bool
		typeTwo bool
	)

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("protobuf tag: %w", protowire.ParseError(n))
		}
		body = body[n:]

		switch num {
		case fieldName, fieldTypeOne, fieldTypeTwo:
			if typ != protowire.BytesType {
				return nil, fmt.Errorf("protobuf field %d: wire type %d, want bytes", num, typ)
			}
			v, n := protowire.ConsumeString(body)
			if n < 0 {
				return nil, fmt.Errorf("protobuf field %d: %w", num, protowire.ParseError(n))
			}
			strs[num] = v
			if num == fieldTypeTwo {
				typeTwo = v != ""
			}
			body = body[n:]

		case fieldNumber, fieldTotal, fieldHitPoints, fieldAttack, fieldDefense,
			fieldSpecialAttack, fieldSpecialDefense, fieldSpeed, fieldGeneration, fieldLegendary:
			if typ != protowire.VarintType {
				return nil, fmt.Errorf("protobuf field %d: wire type %d, want varint", num, typ)
			}
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return nil, fmt.Errorf("protobuf field %d: %w", num, protowire.ParseError(n))
			}
			body = body[n:]

			if num == fieldLegendary {
				legend = protowire.DecodeBool(v)
				continue
			}
			if v > math.MaxInt32 {
				return nil, fmt.Errorf("protobuf field %d: value %d out of range", num, v)
			}
			ints[num] = int(v)

		default:
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return nil, fmt.Errorf("protobuf field %d: %w", num, protowire.ParseError(n))
			}
			body = body[n:]
		}
	}

	raw := &rawPokemon{
		Number:         intPtr(ints[fieldNumber]),
		Name:           strPtr(strs[fieldName]),
		TypeOne:        strPtr(strs[fieldTypeOne]),
		Total:          intPtr(ints[fieldTotal]),
		HitPoints:      intPtr(ints[fieldHitPoints]),
		Attack:         intPtr(ints[fieldAttack]),
		Defense:        intPtr(ints[fieldDefense]),
		SpecialAttack:  intPtr(ints[fieldSpecialAttack]),
		SpecialDefense: intPtr(ints[fieldSpecialDefense]),
		Speed:          intPtr(ints[fieldSpeed]),
		Generation:     intPtr(ints[fieldGeneration]),
		Legendary:      &legend,
	}
	if typeTwo {
		raw.TypeTwo = strPtr(strs[fieldTypeTwo])
	}
	return raw, nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
