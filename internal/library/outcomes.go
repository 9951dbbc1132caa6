package library

import (
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/etag"
)

// UpdateOutcome tells the caller how a conditional write ended. Missing
// books and failed preconditions are ordinary outcomes, not errors.
type UpdateOutcome int

const (
	UpdateApplied UpdateOutcome = iota
	UpdateNotFound
	UpdatePreconditionFailed
)

func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdateNotFound:
		return "not_found"
	case UpdatePreconditionFailed:
		return "precondition_failed"
	default:
		return "unknown"
	}
}

// VersionedBook pairs a book with the entity tag of its current token.
type VersionedBook struct {
	Book *entities.Book
	ETag string
}

// UpdateResult is returned by UpdateBook. ETag is the new tag when the
// update was applied and the current tag when the precondition failed.
type UpdateResult struct {
	Outcome UpdateOutcome
	Book    *entities.Book
	ETag    string
}

// HasPrecondition reports whether the request carried an If-Match header
// at all. An absent header means last-write-wins.
func HasPrecondition(ifMatch []string) bool {
	return etag.Present(ifMatch)
}

// Page is one page of a book listing.
type Page struct {
	Items      []entities.Book `json:"items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalItems int64           `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreStats is the genre breakdown together with the stats version tag it
// was computed under.
type GenreStats struct {
	Items []GenreCount
	ETag  string
}

type MonthlyAverage struct {
	Bucket  string  `json:"bucket"`
	Average float64 `json:"average"`
}

type GenreReads struct {
	Genre     string `json:"genre"`
	ReadCount int    `json:"readCount"`
}
