// Package store holds the per-session key-value handoff between generation,
// editing and export. Values are opaque strings, usually JSON.
package store

import "errors"

// Keys used by the session controller.
const (
	KeyContent      = "pdfContent"
	KeyProductName  = "productName"
	KeyBadgeNames   = "badgeNames"
	KeyBadgeName    = "badgeName"
	KeyBadgeLayouts = "badgeLayouts"
	KeyStyles       = "pdfPreviewSettings"
	KeyDebugRaw     = "debug_raw_data"
)

var (
	ErrEmptyKey = errors.New("store key cannot be empty")
	ErrCorrupt  = errors.New("session file is corrupt")
	ErrWrite    = errors.New("writing session file")
)

// Store is a string key-value store scoped to one session.
type Store interface {
	// Get returns the value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Clear deletes every key the session controller writes.
func Clear(s Store) error {
	for _, k := range []string{
		KeyContent, KeyProductName, KeyBadgeNames, KeyBadgeName,
		KeyBadgeLayouts, KeyStyles, KeyDebugRaw,
	} {
		if err := s.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
