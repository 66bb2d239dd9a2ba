package validation

import (
	"fmt"

	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// Property describes one declared key of an Object schema.
type Property struct {
	Type     Validator
	Nullable bool
	Required bool
}

// Object is the schema for one parameter position that is itself an
// object (a transaction object, a filter object, ...).
type Object struct {
	Name                    string
	Properties              map[string]Property
	FailOnUnexpectedParams  bool
	FailOnEmpty             bool
	DeleteUnknownProperties bool
}

// Validate implements Validator so an Object can also be nested as a
// property's Type (e.g. a filter-object parameter inside another
// object), and is also called directly by the dispatcher for top-level
// object parameters.
func (o Object) Validate(value any) (bool, string) {
	_, err := o.Evaluate(value)
	if err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Evaluate runs the documented evaluation order against raw, returning
// the (possibly stripped) object or the first validation error
// encountered:
//  1. failOnUnexpectedParams rejects the first key not in Properties.
//  2. Else deleteUnknownProperties strips them.
//  3. For each declared property: missing+required -> MISSING_REQUIRED_PARAMETER;
//     present+non-null -> run its validator -> INVALID_PARAMETER on failure.
//  4. failOnEmpty requires at least one declared property present.
func (o Object) Evaluate(raw any) (map[string]any, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: %s must be an object", o.Name))
	}

	if o.FailOnUnexpectedParams {
		for key := range obj {
			if _, declared := o.Properties[key]; !declared {
				return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: unexpected key %q in %s", key, o.Name))
			}
		}
	} else if o.DeleteUnknownProperties {
		for key := range obj {
			if _, declared := o.Properties[key]; !declared {
				delete(obj, key)
			}
		}
	}

	present := 0
	for name, prop := range o.Properties {
		value, ok := obj[name]
		if !ok {
			if prop.Required {
				return nil, pkgError.MissingParameterError(fmt.Sprintf("Missing required parameter: %s.%s", o.Name, name))
			}
			continue
		}
		present++

		if value == nil {
			if prop.Nullable {
				continue
			}
			return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: %s.%s cannot be null", o.Name, name))
		}

		if ok, msg := prop.Type.Validate(value); !ok {
			return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: %s.%s: %s", o.Name, name, msg))
		}
	}

	if o.FailOnEmpty && present == 0 {
		return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: %s must carry at least one recognized property", o.Name))
	}

	return obj, nil
}
