// Package validation implements the parameter validator DSL (C5):
// primitive value tests, object schemas with their multi-step evaluation
// order, and compound "A|B" pipe-types evaluated as an OR across
// primitives.
package validation

import "fmt"

// Validator is satisfied by every primitive, compound and object
// validator in this package.
type Validator interface {
	// Validate reports whether value is acceptable, and if not, a
	// human-readable message describing why.
	Validate(value any) (bool, string)
}

// Primitive is a leaf validator: a boolean test plus the message to
// report when it fails.
type Primitive struct {
	Name string
	Test func(value any) bool
	Err  string
}

func (p Primitive) Validate(value any) (bool, string) {
	if p.Test(value) {
		return true, ""
	}
	return false, p.Err
}

// Or validates a compound pipe-type ("blockHash|blockNumber"): the value
// is accepted if any member validator accepts it; the failure message
// lists every member's error.
type Or struct {
	Name    string
	Members []Validator
}

func (o Or) Validate(value any) (bool, string) {
	for _, m := range o.Members {
		if ok, _ := m.Validate(value); ok {
			return true, ""
		}
	}

	msgs := make([]string, 0, len(o.Members))
	for _, m := range o.Members {
		_, msg := m.Validate(value)
		if msg != "" {
			msgs = append(msgs, msg)
		}
	}
	return false, fmt.Sprintf("%s: value did not satisfy any of %v", o.Name, msgs)
}
