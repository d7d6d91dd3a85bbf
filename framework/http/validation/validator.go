package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors by field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Messages returns every message, fields in alphabetical order.
func (e *Errors) Messages() []string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		out = append(out, e.Bag[f]...)
	}
	return out
}

// Error makes *Errors usable as an error: the messages joined with "; ".
func (e *Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"email": "required|email", "age": "required|numeric|gte:18"}
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator over string input.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// MakeFromMap creates a Validator over decoded JSON. Scalars are rendered
// with their natural string form; nil and missing keys become "".
func MakeFromMap(data map[string]any, rules Rules) *Validator {
	flat := make(map[string]string, len(data))
	for k, v := range data {
		flat[k] = stringify(v)
	}
	return Make(flat, rules)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	if v.ran {
		return
	}
	v.ran = true

	fields := make([]string, 0, len(v.rules))
	for f := range v.rules {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := v.data[field]
		rules := strings.Split(v.rules[field], "|")

		// nullable: an empty value skips every other rule
		if value == "" && contains(rules, "nullable") {
			continue
		}

		for _, rule := range rules {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}

			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(field, value, name, param) {
				break // bail on first failure per field
			}
		}
	}
}

func contains(rules []string, name string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == name {
			return true
		}
	}
	return false
}

var (
	urlPattern       = regexp.MustCompile(`^https?://`)
	alphaPattern     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumPattern  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// applyRule returns true if the rule passes.
func (v *Validator) applyRule(field, value, rule, param string) bool {
	fail := func(format string, args ...any) bool {
		v.errors.add(field, fmt.Sprintf(format, args...))
		return false
	}

	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			return fail("The %s field is required.", field)
		}

	case "string", "nullable":

	case "sometimes":
		if value == "" {
			return false // absent: skip the rest silently
		}

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fail("The %s must be a number.", field)
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			return fail("The %s must be an integer.", field)
		}

	case "boolean":
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no":
		default:
			return fail("The %s field must be true or false.", field)
		}

	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			return fail("The %s must be a valid email address.", field)
		}

	case "url":
		if !urlPattern.MatchString(value) {
			return fail("The %s must be a valid URL.", field)
		}

	case "min":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return fail("The %s must be at least %d characters.", field, n)
		}

	case "max":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return fail("The %s may not be greater than %d characters.", field, n)
		}

	case "size":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) != n {
			return fail("The %s must be %d characters.", field, n)
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		min, _ := strconv.Atoi(strings.TrimSpace(lo))
		max, _ := strconv.Atoi(strings.TrimSpace(hi))
		if l := utf8.RuneCountInString(value); l < min || l > max {
			return fail("The %s must be between %d and %d characters.", field, min, max)
		}

	case "in", "not_in":
		found := false
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				found = true
				break
			}
		}
		if found != (rule == "in") {
			return fail("The selected %s is invalid.", field)
		}

	case "confirmed":
		if v.data[field+"_confirmation"] != value {
			return fail("The %s confirmation does not match.", field)
		}

	case "same":
		if v.data[param] != value {
			return fail("The %s and %s must match.", field, param)
		}

	case "different":
		if v.data[param] == value {
			return fail("The %s and %s must be different.", field, param)
		}

	case "alpha":
		if !alphaPattern.MatchString(value) {
			return fail("The %s may only contain letters.", field)
		}

	case "alpha_num":
		if !alphaNumPattern.MatchString(value) {
			return fail("The %s may only contain letters and numbers.", field)
		}

	case "alpha_dash":
		if !alphaDashPattern.MatchString(value) {
			return fail("The %s may only contain letters, numbers, dashes and underscores.", field)
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return fail("The %s format is invalid.", field)
		}

	case "gt", "gte", "lt", "lte":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fail("The %s must be a number.", field)
		}
		t, _ := strconv.ParseFloat(param, 64)
		switch {
		case rule == "gt" && f <= t:
			return fail("The %s must be greater than %s.", field, param)
		case rule == "gte" && f < t:
			return fail("The %s must be greater than or equal to %s.", field, param)
		case rule == "lt" && f >= t:
			return fail("The %s must be less than %s.", field, param)
		case rule == "lte" && f > t:
			return fail("The %s must be less than or equal to %s.", field, param)
		}
	}

	return true
}
