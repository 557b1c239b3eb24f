// Package envelope unwraps the response shapes returned by the generation
// and badge-listing webhooks.
//
// Each shape is tried by a prioritized matcher that either matches definitely
// or not at all; the first match wins. Unrecognized shapes are passed
// through untouched.
package envelope
