package calendar

import (
	"strings"
	"unicode"

	"github.com/wolfeidau/teamcal/internal/auth"
	"github.com/wolfeidau/teamcal/internal/models"
	"github.com/wolfeidau/teamcal/internal/store"
)

// requireViewer rejects anonymous callers before any store access.
func requireViewer(viewer *models.User) error {
	if viewer == nil || viewer.UserID == 0 {
		return auth.ErrUnauthenticated
	}
	return nil
}

// viewerQuery starts every event query from the viewer's own scope; filters only narrow it.
func viewerQuery(viewer *models.User) store.EventQuery {
	return store.EventQuery{ViewerID: viewer.UserID}
}

// SearchTerms splits a free-text query on whitespace and commas.
func SearchTerms(query string) []string {
	query = strings.ReplaceAll(query, "\x00", "")
	return strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
