// internal/app/features/directory/cursor.go
package directory

import (
	"encoding/base64"
	"encoding/json"
)

// listingCursor is the keyset position in the name+_id sort order of
// public_listings. Chamber ids are string slugs, so the ObjectID-based
// cursor helpers used elsewhere do not apply here.
type listingCursor struct {
	Name string `json:"n"`
	ID   string `json:"i"`
}

func encodeCursor(name, id string) string {
	raw, _ := json.Marshal(listingCursor{Name: name, ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (listingCursor, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return listingCursor{}, false
	}
	var c listingCursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return listingCursor{}, false
	}
	return c, true
}
