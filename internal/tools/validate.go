package tools

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

// ValidateInputs checks the payload against the tool's field declarations
// and returns a field -> message map; empty means valid.
func ValidateInputs(fields []Field, in Inputs) map[string]string {
	errors := make(map[string]string)

	for _, field := range fields {
		raw, present := in[field.Name]
		empty := !present || raw == nil || strings.TrimSpace(in.String(field.Name)) == ""

		if empty {
			if field.Required {
				errors[field.Name] = fmt.Sprintf("%s is required", field.labelOrName())
			}
			continue
		}

		switch field.Kind {
		case FieldNumber, FieldInteger:
			val, ok := numericValue(raw)
			if !ok {
				if field.Kind == FieldInteger {
					errors[field.Name] = "Must be a whole number"
				} else {
					errors[field.Name] = "Must be a number"
				}
				continue
			}
			if field.Kind == FieldInteger && val != math.Trunc(val) {
				errors[field.Name] = "Must be a whole number"
				continue
			}
			if field.Min != nil && val < *field.Min {
				errors[field.Name] = fmt.Sprintf("Must be at least %s", formatBound(*field.Min))
				continue
			}
			if field.Max != nil && val > *field.Max {
				errors[field.Name] = fmt.Sprintf("Must be no more than %s", formatBound(*field.Max))
			}

		case FieldEmail:
			if _, err := mail.ParseAddress(in.String(field.Name)); err != nil {
				errors[field.Name] = "Must be a valid email"
			}
		}
	}

	return errors
}

func (f Field) labelOrName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func numericValue(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
