// Package inline converts image references into self-contained data URIs
// so a captured card never depends on the network.
//
// Remote images are fetched once with the configured client. When that
// fails, or the server does not declare a content type, an anonymous
// refetch is sniffed and re-encoded to PNG. Local file references cannot be
// inlined and are reported with ErrLocalImage.
package inline
