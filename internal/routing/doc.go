// Package routing decides where a record goes.
//
// A rule holds an ordered list of condition strings of the form
// <field><operator><value>. Operators are looked up in the order
// "==", "!=", ">", "<" so that the two-character forms win over the
// single-character comparisons. Field and value are trimmed.
//
// Each condition string is parsed into one of four node types:
//
//   - Equals and NotEquals hold the value as text. Against a boolean field the
//     text is read case-insensitively ("true" means true, anything else false);
//     against any other field the field's value is formatted as text and
//     compared exactly.
//   - GreaterThan and LessThan hold the value as a float64 and compare it with
//     the field's value read as a number. A boolean reads as 1 when true and
//     0 when false.
//
// A rule matches when every one of its conditions holds. A condition that
// cannot be parsed or evaluated (unknown field, absent optional field,
// non-numeric operand) makes its rule fail to match; the engine logs the
// problem and moves on to the next rule. A rule without conditions never
// matches. The first matching rule wins.
package routing
