package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTotalPages caps the stored page count. The upstream catalog rejects
// requests for pages beyond 100 regardless of how many it reports.
const MaxTotalPages = 100

// Search is a user's single active search session: the term plus the
// clamped total page count reported by the catalog. A user has at most
// one row at a time; it lives only while the user is paging through
// results and is torn down on navigation away or on a new term.
type Search struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Term       string    `json:"term"`
	TotalPages int       `json:"totalPages"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSearch creates a search session, clamping the upstream page count.
func NewSearch(userID, term string, upstreamTotalPages int) (*Search, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrSearchUserRequired
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	totalPages := upstreamTotalPages
	if totalPages > MaxTotalPages {
		totalPages = MaxTotalPages
	}
	if totalPages < 1 {
		totalPages = 1
	}

	return &Search{
		ID:         uuid.New().String(),
		UserID:     userID,
		Term:       term,
		TotalPages: totalPages,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// SearchPage is one page index entry: it records that an artwork appears
// on a given page of a search, at a given position within that page.
// Entries are immutable once written and are deleted with their search.
type SearchPage struct {
	ID         string `json:"id"`
	SearchID   string `json:"searchId"`
	ArtworkID  string `json:"artworkId"`
	PageNumber int    `json:"pageNumber"`
	Position   int    `json:"position"`
}

// NewSearchPage creates a page index entry.
func NewSearchPage(searchID, artworkID string, pageNumber, position int) *SearchPage {
	return &SearchPage{
		ID:         uuid.New().String(),
		SearchID:   searchID,
		ArtworkID:  artworkID,
		PageNumber: pageNumber,
		Position:   position,
	}
}

// Errors
type SearchError struct {
	Message string
}

func (e SearchError) Error() string {
	return e.Message
}

var (
	ErrSearchNotFound     = SearchError{"no active search"}
	ErrSearchUserRequired = SearchError{"user ID is required"}
	ErrEmptyTerm          = SearchError{"search term cannot be empty"}
	ErrInvalidPage        = SearchError{"page number must be at least 1"}
	ErrActiveSearchExists = SearchError{"an active search for a different term exists; clear it first"}
)
