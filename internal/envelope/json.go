package envelope

import (
	"strings"

	"github.com/tidwall/gjson"
)

// truthy mirrors loose JSON truthiness: present, not null, not false, not
// zero and not an empty string.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}

// firstString returns the first alias of obj holding a non-blank string.
func firstString(obj gjson.Result, aliases ...string) string {
	for _, key := range aliases {
		v := obj.Get(key)
		if v.Type == gjson.String {
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstTruthy returns the string form of the first truthy alias of obj.
func firstTruthy(obj gjson.Result, aliases ...string) string {
	for _, key := range aliases {
		if v := obj.Get(key); truthy(v) {
			return v.String()
		}
	}
	return ""
}

// values returns the elements of an array, or the values of an object in
// document order. Anything else yields nil.
func values(r gjson.Result) []gjson.Result {
	switch {
	case r.IsArray():
		return r.Array()
	case r.IsObject():
		var out []gjson.Result
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, v)
			return true
		})
		return out
	}
	return nil
}
