package validation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-nest/framework/http/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

type ruleCase struct {
	name  string
	data  map[string]string
	field string // empty means the case must pass
}

func runCases(t *testing.T, rules validation.Rules, cases []ruleCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := validation.Make(tc.data, rules)
			if tc.field == "" {
				assert.True(t, v.Passes(), "errors: %+v", v.Errors().Bag)
				return
			}
			assert.True(t, v.Fails())
			assert.NotEmpty(t, v.Errors().First(tc.field), "errors: %+v", v.Errors().Bag)
		})
	}
}

// ── rules ────────────────────────────────────────────────────────────────────

func TestRequired(t *testing.T) {
	runCases(t, validation.Rules{"name": "required"}, []ruleCase{
		{"present", map[string]string{"name": "Alice"}, ""},
		{"empty", map[string]string{"name": ""}, "name"},
		{"whitespace", map[string]string{"name": "   "}, "name"},
		{"missing", map[string]string{}, "name"},
	})

	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())
	assert.Equal(t, "The name field is required.", v.Errors().First("name"))
}

func TestLengthRules(t *testing.T) {
	runCases(t, validation.Rules{"code": "min:2|max:4"}, []ruleCase{
		{"ok", map[string]string{"code": "abc"}, ""},
		{"too short", map[string]string{"code": "a"}, "code"},
		{"too long", map[string]string{"code": "abcde"}, "code"},
		{"runes not bytes", map[string]string{"code": "日本語"}, ""},
	})
	runCases(t, validation.Rules{"pin": "size:4"}, []ruleCase{
		{"exact", map[string]string{"pin": "1234"}, ""},
		{"short", map[string]string{"pin": "123"}, "pin"},
	})
	runCases(t, validation.Rules{"name": "between:2,3"}, []ruleCase{
		{"low edge", map[string]string{"name": "ab"}, ""},
		{"high edge", map[string]string{"name": "abc"}, ""},
		{"over", map[string]string{"name": "abcd"}, "name"},
	})
}

func TestFormatRules(t *testing.T) {
	runCases(t, validation.Rules{"email": "email"}, []ruleCase{
		{"valid", map[string]string{"email": "a@example.com"}, ""},
		{"invalid", map[string]string{"email": "nope"}, "email"},
	})
	runCases(t, validation.Rules{"site": "url"}, []ruleCase{
		{"https", map[string]string{"site": "https://example.com"}, ""},
		{"ftp", map[string]string{"site": "ftp://example.com"}, "site"},
	})
	runCases(t, validation.Rules{"slug": "alpha_dash"}, []ruleCase{
		{"ok", map[string]string{"slug": "my-slug_1"}, ""},
		{"space", map[string]string{"slug": "my slug"}, "slug"},
	})
	runCases(t, validation.Rules{"zip": `regex:^\d{5}$`}, []ruleCase{
		{"match", map[string]string{"zip": "12345"}, ""},
		{"no match", map[string]string{"zip": "1234a"}, "zip"},
	})
}

func TestNumericRules(t *testing.T) {
	runCases(t, validation.Rules{"age": "integer|gte:18|lt:130"}, []ruleCase{
		{"adult", map[string]string{"age": "18"}, ""},
		{"minor", map[string]string{"age": "17"}, "age"},
		{"float", map[string]string{"age": "18.5"}, "age"},
		{"absurd", map[string]string{"age": "200"}, "age"},
	})
	runCases(t, validation.Rules{"flag": "boolean"}, []ruleCase{
		{"yes", map[string]string{"flag": "YES"}, ""},
		{"maybe", map[string]string{"flag": "maybe"}, "flag"},
	})
}

func TestMembershipAndComparison(t *testing.T) {
	runCases(t, validation.Rules{"role": "in:admin,user"}, []ruleCase{
		{"member", map[string]string{"role": "admin"}, ""},
		{"stranger", map[string]string{"role": "root"}, "role"},
	})
	runCases(t, validation.Rules{"role": "not_in:root"}, []ruleCase{
		{"allowed", map[string]string{"role": "admin"}, ""},
		{"banned", map[string]string{"role": "root"}, "role"},
	})
	runCases(t, validation.Rules{"password": "confirmed"}, []ruleCase{
		{"match", map[string]string{"password": "x", "password_confirmation": "x"}, ""},
		{"mismatch", map[string]string{"password": "x", "password_confirmation": "y"}, "password"},
	})
	runCases(t, validation.Rules{"new": "different:old"}, []ruleCase{
		{"changed", map[string]string{"new": "b", "old": "a"}, ""},
		{"same", map[string]string{"new": "a", "old": "a"}, "new"},
	})
}

func TestControlRules(t *testing.T) {
	runCases(t, validation.Rules{"nick": "nullable|min:3"}, []ruleCase{
		{"absent", map[string]string{}, ""},
		{"too short", map[string]string{"nick": "ab"}, "nick"},
	})
	runCases(t, validation.Rules{"bio": "sometimes|min:3"}, []ruleCase{
		{"absent", map[string]string{}, ""},
		{"present short", map[string]string{"bio": "ab"}, "bio"},
	})
}

func TestBailsPerField(t *testing.T) {
	v := validation.Make(map[string]string{"email": ""}, validation.Rules{"email": "required|email"})
	require.True(t, v.Fails())
	assert.Len(t, v.Errors().Bag["email"], 1)
}

// ── map input ────────────────────────────────────────────────────────────────

func TestMakeFromMap(t *testing.T) {
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","qty":3,"active":true,"note":null}`), &body))

	v := validation.MakeFromMap(body, validation.Rules{
		"name":   "required|min:3",
		"qty":    "required|integer|gt:0",
		"active": "boolean",
		"note":   "nullable|min:10",
	})
	assert.True(t, v.Passes(), "errors: %+v", v.Errors().Bag)

	v = validation.MakeFromMap(map[string]any{"qty": 0.5}, validation.Rules{"qty": "integer"})
	assert.True(t, v.Fails())
}

// ── error bag ────────────────────────────────────────────────────────────────

func TestErrors_MessagesAndJSON(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{
		"name":  "required",
		"email": "required",
	})
	require.True(t, v.Fails())

	errs := v.Errors()
	assert.Equal(t, []string{
		"The email field is required.",
		"The name field is required.",
	}, errs.Messages())
	assert.Equal(t, "The email field is required.; The name field is required.", errs.Error())

	raw, err := json.Marshal(errs)
	require.NoError(t, err)

	var shape map[string]map[string][]string
	require.NoError(t, json.Unmarshal(raw, &shape))
	assert.Contains(t, shape, "errors")
	assert.Len(t, shape["errors"], 2)
}

func TestFailsIsIdempotent(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	v.Fails()
	v.Fails()
	assert.Len(t, v.Errors().Bag["name"], 1)
}
