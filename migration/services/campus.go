package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/parishsource/shepherd/migration/domain"
)

// campusDelimiters is the fixed delimiter set between a campus token and
// the rest of a name. Order is the match precedence.
var campusDelimiters = []string{" - ", ": ", " | "}

// ExtractCampus finds a campus token carried as prefix or suffix of a
// source name. A matched token is stripped from the name and resolved to
// the campus id; an unresolved token is left in the name unchanged.
// Prefix positions are checked before suffix positions.
func ExtractCampus(name string, campuses []domain.CampusRecord) (string, *uuid.UUID) {
	trimmed := strings.TrimSpace(name)
	for _, delim := range campusDelimiters {
		if before, after, found := strings.Cut(trimmed, delim); found {
			if id := matchCampus(before, campuses); id != nil {
				return strings.TrimSpace(after), id
			}
		}
		if i := strings.LastIndex(trimmed, delim); i >= 0 {
			token := trimmed[i+len(delim):]
			if id := matchCampus(token, campuses); id != nil {
				return strings.TrimSpace(trimmed[:i]), id
			}
		}
	}
	return trimmed, nil
}

// matchCampus resolves a token by exact name or short-code match,
// case-insensitively.
func matchCampus(token string, campuses []domain.CampusRecord) *uuid.UUID {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	for _, c := range campuses {
		if strings.EqualFold(token, c.Name) || (c.ShortCode != "" && strings.EqualFold(token, c.ShortCode)) {
			id := c.ID
			return &id
		}
	}
	return nil
}
