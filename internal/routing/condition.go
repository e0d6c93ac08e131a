package routing

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is anything conditions can read fields from
type Record interface {
	Lookup(field string) (interface{}, bool)
}

// Condition is one parsed predicate. The concrete types are Equals,
// NotEquals, GreaterThan and LessThan.
type Condition interface {
	// FieldName is the record field the condition reads
	FieldName() string
	// Evaluate reports whether the condition holds for record
	Evaluate(record Record) (bool, error)
	String() string
}

// Equals holds when the field equals Value
type Equals struct {
	Field string
	Value string
}

// NotEquals holds when the field differs from Value
type NotEquals struct {
	Field string
	Value string
}

// GreaterThan holds when the field is numerically greater than Value
type GreaterThan struct {
	Field string
	Value float64
}

// LessThan holds when the field is numerically less than Value
type LessThan struct {
	Field string
	Value float64
}

// operators in lookup order
var operators = []string{"==", "!=", ">", "<"}

// ParseCondition turns "<field><op><value>" into a Condition
func ParseCondition(raw string) (Condition, error) {
	for _, op := range operators {
		if !strings.Contains(raw, op) {
			continue
		}

		field, value, _ := strings.Cut(raw, op)
		if strings.Contains(value, op) {
			return nil, fmt.Errorf("%w: %q repeats %q", ErrMalformedCondition, raw, op)
		}

		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if field == "" {
			return nil, fmt.Errorf("%w: %q has no field", ErrMalformedCondition, raw)
		}

		switch op {
		case "==":
			return Equals{Field: field, Value: value}, nil
		case "!=":
			return NotEquals{Field: field, Value: value}, nil
		}

		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q in %q", ErrNotNumeric, value, raw)
		}
		if op == ">" {
			return GreaterThan{Field: field, Value: number}, nil
		}
		return LessThan{Field: field, Value: number}, nil
	}

	return nil, fmt.Errorf("%w: %q has no operator", ErrMalformedCondition, raw)
}

func (c Equals) FieldName() string      { return c.Field }
func (c NotEquals) FieldName() string   { return c.Field }
func (c GreaterThan) FieldName() string { return c.Field }
func (c LessThan) FieldName() string    { return c.Field }

func (c Equals) String() string    { return c.Field + "==" + c.Value }
func (c NotEquals) String() string { return c.Field + "!=" + c.Value }
func (c GreaterThan) String() string {
	return c.Field + ">" + strconv.FormatFloat(c.Value, 'g', -1, 64)
}
func (c LessThan) String() string {
	return c.Field + "<" + strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// Evaluate implements Condition
func (c Equals) Evaluate(record Record) (bool, error) {
	return equalsField(record, c.Field, c.Value)
}

// Evaluate implements Condition
func (c NotEquals) Evaluate(record Record) (bool, error) {
	equal, err := equalsField(record, c.Field, c.Value)
	if err != nil {
		return false, err
	}
	return !equal, nil
}

// Evaluate implements Condition
func (c GreaterThan) Evaluate(record Record) (bool, error) {
	v, err := numericField(record, c.Field)
	if err != nil {
		return false, err
	}
	return v > c.Value, nil
}

// Evaluate implements Condition
func (c LessThan) Evaluate(record Record) (bool, error) {
	v, err := numericField(record, c.Field)
	if err != nil {
		return false, err
	}
	return v < c.Value, nil
}

func lookup(record Record, field string) (interface{}, error) {
	v, ok := record.Lookup(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return v, nil
}

func equalsField(record Record, field, value string) (bool, error) {
	v, err := lookup(record, field)
	if err != nil {
		return false, err
	}

	if b, ok := v.(bool); ok {
		return b == strings.EqualFold(value, "true"), nil
	}
	return formatValue(v) == value, nil
}

func numericField(record Record, field string) (float64, error) {
	v, err := lookup(record, field)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %s is %q", ErrNotNumeric, field, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: field %s is %T", ErrNotNumeric, field, v)
	}
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
