// Package render turns a content document into the HTML product card.
//
// Rendering is deterministic: the same document, badges and style overrides
// always produce byte-identical markup. Every text field goes through
// html/template escaping. Style overrides are validated per knob and emitted
// as a stylesheet injected in the document head.
package render
