// Package validation checks flat input maps against pipe-separated rule
// strings.
//
//	v := validation.MakeFromMap(body, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	    "age":   "nullable|integer|gte:18",
//	})
//	if v.Fails() {
//	    return v.Errors() // *Errors implements error
//	}
//
// Fields are checked in alphabetical order and each field stops at its first
// failing rule, so messages are deterministic.
//
// Rules:
//   - required, string, nullable, sometimes
//   - min:n, max:n, size:n, between:lo,hi (rune counts)
//   - alpha, alpha_num, alpha_dash, regex:pattern
//   - email, url
//   - numeric, integer, boolean, gt:n, gte:n, lt:n, lte:n
//   - in:a,b,c, not_in:a,b,c
//   - confirmed, same:other, different:other
//
// The error bag serializes as {"errors": {"field": ["message", ...]}}.
package validation
