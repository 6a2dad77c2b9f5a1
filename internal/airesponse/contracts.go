package airesponse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/erazemk/omara/internal/model"
)

// ClassificationContract is what the clothing classifier must return.
var ClassificationContract = Contract{
	Name: "classification",
	Required: []Key{
		{Name: "type", Aliases: []string{"jenis"}},
		{Name: "color", Aliases: []string{"warna"}},
		{Name: "style", Aliases: []string{"gaya"}},
	},
}

// FeedbackContract is what the outfit stylist must return.
var FeedbackContract = Contract{
	Name: "feedback",
	Required: []Key{
		{Name: "rating"},
		{Name: "feedback"},
		{Name: "suggestion", Aliases: []string{"saran"}},
	},
}

// localizedTypes maps Indonesian category names to clothing types.
var localizedTypes = map[string]model.ClothingType{
	"atasan":   model.TypeTop,
	"bawahan":  model.TypeBottom,
	"luaran":   model.TypeOuterwear,
	"gaun":     model.TypeDress,
	"sepatu":   model.TypeShoes,
	"aksesori": model.TypeAccessory,
}

// NormalizeType maps localized or differently cased category names onto the
// known clothing types. Unknown values are returned trimmed but otherwise
// unchanged.
func NormalizeType(s string) model.ClothingType {
	s = strings.TrimSpace(s)
	if t, ok := localizedTypes[strings.ToLower(s)]; ok {
		return t
	}
	for _, t := range model.ClothingTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return model.ClothingType(s)
}

// ParseClassification validates raw classifier output.
func ParseClassification(raw string) (model.Classification, error) {
	doc, err := ClassificationContract.Decode(raw)
	if err != nil {
		return model.Classification{}, err
	}

	fields := stringFields(doc, "type", "color", "style")
	if bad := invalid(fields); len(bad) > 0 {
		return model.Classification{}, &Error{Kind: ErrSchemaMismatch, Contract: ClassificationContract.Name, Raw: raw, Fields: bad}
	}

	return model.Classification{
		Type:  NormalizeType(*fields["type"]),
		Color: strings.TrimSpace(*fields["color"]),
		Style: strings.TrimSpace(*fields["style"]),
	}, nil
}

// ParseFeedback validates raw stylist output. The rating is not range
// checked.
func ParseFeedback(raw string) (model.OutfitFeedback, error) {
	doc, err := FeedbackContract.Decode(raw)
	if err != nil {
		return model.OutfitFeedback{}, err
	}

	fields := stringFields(doc, "feedback", "suggestion")
	bad := invalid(fields)
	rating, ok := integer(doc["rating"])
	if !ok {
		bad = append([]string{"rating"}, bad...)
	}
	if len(bad) > 0 {
		return model.OutfitFeedback{}, &Error{Kind: ErrSchemaMismatch, Contract: FeedbackContract.Name, Raw: raw, Fields: bad}
	}

	return model.OutfitFeedback{
		Rating:     rating,
		Feedback:   *fields["feedback"],
		Suggestion: *fields["suggestion"],
	}, nil
}

// stringFields returns pointers to the string values of keys; non-string
// values map to nil.
func stringFields(doc map[string]any, keys ...string) map[string]*string {
	out := make(map[string]*string, len(keys))
	for _, k := range keys {
		if s, ok := doc[k].(string); ok {
			out[k] = &s
		} else {
			out[k] = nil
		}
	}
	return out
}

func invalid(fields map[string]*string) []string {
	var bad []string
	for _, k := range []string{"type", "color", "style", "feedback", "suggestion"} {
		if v, ok := fields[k]; ok && v == nil {
			bad = append(bad, k)
		}
	}
	return bad
}

// integer accepts JSON numbers without a fractional part and numeric
// strings.
func integer(v any) (int, bool) {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case string:
		s = strings.TrimSpace(n)
	default:
		return 0, false
	}

	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
