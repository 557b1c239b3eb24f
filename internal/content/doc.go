// Package content holds the canonical product-sheet document and the parser
// that turns raw AI text into it.
//
// Two encodings are accepted: a loose XML dialect rooted at <fiche> and a
// bold-heading Markdown dialect. Parsing never fails across the package
// boundary: problems come back as a Result carrying the error and a snippet
// of the raw input.
package content
