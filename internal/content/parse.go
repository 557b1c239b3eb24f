package content

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Format is the detected encoding of a raw response.
type Format string

const (
	FormatXML      Format = "XML"
	FormatMarkdown Format = "MARKDOWN"
)

// MaxInputSize bounds the raw text accepted by Parse (default 1MB).
var MaxInputSize = 1 << 20

// snippetLimit is the number of characters of raw input kept on failure.
const snippetLimit = 1000

// Sentinel errors carried by failed results.
var (
	ErrParse         = errors.New("erreur lors du parsing de la réponse IA")
	ErrInputTooLarge = errors.New("input exceeds maximum size")
)

// Debug describes what the parser found before defaults were applied.
type Debug struct {
	Format           Format `json:"formatDetected" yaml:"formatDetected"`
	ResponseLength   int    `json:"responseLength" yaml:"responseLength"`
	HasTitle         bool   `json:"titre" yaml:"titre"`
	Features         int    `json:"caracteristiques" yaml:"caracteristiques"`
	ConsumptionIdeas int    `json:"consommation" yaml:"consommation"`
	Recipes          int    `json:"recettes" yaml:"recettes"`
}

// Result is the outcome of Parse. Exactly one of Document and Err is set.
type Result struct {
	Document *Document
	Debug    Debug
	Err      error
	// RawSnippet holds the start of the raw input when Err is set.
	RawSnippet string
}

// OK reports whether parsing succeeded.
func (r Result) OK() bool {
	return r.Err == nil && r.Document != nil
}

// Detect returns the dialect of raw.
func Detect(raw string) Format {
	if isXMLDialect(raw) {
		return FormatXML
	}
	return FormatMarkdown
}

// Parse converts raw AI text into a document with defaults applied. It never
// panics; any failure is reported through Result.Err and the result carries
// no partial content.
func Parse(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(raw, fmt.Errorf("%w: %v", ErrParse, r))
		}
	}()

	if len(raw) > MaxInputSize {
		return failure(raw, fmt.Errorf("%w: %w: %d bytes (max %d)", ErrParse, ErrInputTooLarge, len(raw), MaxInputSize))
	}

	format := Detect(raw)
	var doc *Document
	if format == FormatXML {
		doc = parseXML(raw)
	} else {
		doc = parseMarkdown(raw)
	}

	debug := Debug{
		Format:           format,
		ResponseLength:   utf8.RuneCountInString(raw),
		HasTitle:         doc.Title != "",
		Features:         len(doc.Features),
		ConsumptionIdeas: len(doc.ConsumptionIdeas),
		Recipes:          len(doc.Recipes),
	}

	ApplyDefaults(doc)
	return Result{Document: doc, Debug: debug}
}

func failure(raw string, err error) Result {
	return Result{Err: err, RawSnippet: Snippet(raw, snippetLimit)}
}

// Snippet returns at most n characters from the start of s.
func Snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
