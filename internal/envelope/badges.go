package envelope

import (
	"strings"

	"github.com/tidwall/gjson"
)

// BadgeOption is one selectable badge.
type BadgeOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Keys probed, in order, for the badge array inside an object response.
var badgeListKeys = []string{"data", "badges", "items", "results", "payload", "list"}

var (
	badgeValueAliases = []string{"slug", "name", "nom", "label", "titre"}
	badgeLabelAliases = []string{"nom", "name", "label", "titre", "slug"}
)

const defaultBadgeLabel = "Badge"

// UnwrapBadgeList extracts badge options from a listing response. It never
// fails: malformed input yields an empty slice.
func UnwrapBadgeList(raw []byte) []BadgeOption {
	if !gjson.ValidBytes(raw) {
		return []BadgeOption{}
	}
	return badgeOptions(badgeArray(gjson.ParseBytes(raw)))
}

// badgeArray unwraps the listing envelope down to its element list.
func badgeArray(v gjson.Result) []gjson.Result {
	if v.IsArray() {
		items := v.Array()
		if len(items) > 0 && truthy(items[0].Get(envelopeKey)) {
			unwrapped := make([]gjson.Result, 0, len(items))
			for _, item := range items {
				unwrapped = append(unwrapped, item.Get(envelopeKey))
			}
			return unwrapped
		}
		return items
	}

	if v.IsObject() && truthy(v.Get(envelopeKey)) {
		v = v.Get(envelopeKey)
		if v.IsArray() {
			return v.Array()
		}
	}

	if v.IsObject() {
		if nested := v.Get("data.badges"); nested.IsArray() {
			return nested.Array()
		}
		for _, key := range badgeListKeys {
			if r := v.Get(key); r.IsArray() {
				return r.Array()
			}
		}
		var found []gjson.Result
		v.ForEach(func(_, val gjson.Result) bool {
			if val.IsArray() {
				found = val.Array()
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}

	if !v.Exists() {
		return nil
	}
	return []gjson.Result{v}
}

// badgeOptions maps raw elements to options, dropping entries without a
// value and keeping the first of any duplicate.
func badgeOptions(items []gjson.Result) []BadgeOption {
	out := []BadgeOption{}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var opt BadgeOption
		switch {
		case item.Type == gjson.String:
			opt = BadgeOption{Value: item.Str, Label: item.Str}
		case item.IsObject():
			opt.Value = firstTruthy(item, badgeValueAliases...)
			opt.Label = firstTruthy(item, badgeLabelAliases...)
			if opt.Label == "" {
				opt.Label = opt.Value
			}
			if opt.Label == "" {
				opt.Label = defaultBadgeLabel
			}
		default:
			continue
		}
		if opt.Value == "" || seen[opt.Value] {
			continue
		}
		seen[opt.Value] = true
		out = append(out, opt)
	}
	return out
}

// BadgeGroups splits options into the folders shown in the badge picker.
type BadgeGroups struct {
	Logos  []BadgeOption `json:"logos" yaml:"logos"`
	Atouts []BadgeOption `json:"atouts" yaml:"atouts"`
	Others []BadgeOption `json:"others" yaml:"others"`
}

// GroupBadges sorts options into logos ("logo_"), atouts ("_atout") and
// the rest, keeping input order within each group.
func GroupBadges(opts []BadgeOption) BadgeGroups {
	var g BadgeGroups
	for _, o := range opts {
		switch {
		case strings.Contains(o.Value, "logo_"):
			g.Logos = append(g.Logos, o)
		case strings.Contains(o.Value, "_atout"):
			g.Atouts = append(g.Atouts, o)
		default:
			g.Others = append(g.Others, o)
		}
	}
	return g
}
