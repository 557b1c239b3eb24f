// Package webhook is the HTTP transport to the generation workflow: one
// POST that produces the product sheet content, one GET listing the
// available badges, and the URL scheme of badge images.
//
// Transport failures are reported with French, user-facing messages
// (ErrTimeout, ErrConnection, *StatusError). The response body is returned
// raw; decoding belongs to the envelope package.
package webhook
