package core

import (
	"time"
)

// Email represents an email message handed to the digest pipeline
type Email struct {
	ID      string
	From    string
	To      []string
	Subject string
	Date    string
	Snippet string
	Body    string
	Headers map[string][]string
}

// Category is the fixed classification an email is sorted into.
// Declaration order is the tie-break order for the report histogram.
type Category int

const (
	CategoryPersonal Category = iota
	CategoryWork
	CategoryDuties
	CategoryAds
	CategoryNews
	CategoryOther
)

// Categories lists all categories in declaration order
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryDuties,
	CategoryAds,
	CategoryNews,
	CategoryOther,
}

var categoryNames = map[Category]string{
	CategoryPersonal: "Personal",
	CategoryWork:     "Work",
	CategoryDuties:   "Official duties",
	CategoryAds:      "Marketing and promotions",
	CategoryNews:     "News and newsletters",
	CategoryOther:    "Other",
}

// String returns the human-readable category name
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Other"
}

// EmailAnalysis represents the working state of one email as it moves
// through the classification stages. Each stage writes its field exactly
// once; no stage revisits an earlier field.
type EmailAnalysis struct {
	Email           *Email
	Position        int
	SpamScore       int
	ImportanceScore int
	Summary         []string
	Category        Category
	Degraded        bool
	AnalyzedAt      time.Time
	ModelUsed       string
}

// CategoryCount is one histogram bucket of the digest report
type CategoryCount struct {
	Category Category
	Count    int
}

// Report represents the final digest built from a completed batch
type Report struct {
	TotalRequested int
	TopEmails      []*EmailAnalysis
	CategoryCounts []CategoryCount
	SpamCount      int
}

// CachedAnalysis is a persisted classification result for one message
type CachedAnalysis struct {
	MessageID       string
	SpamScore       int
	ImportanceScore int
	Summary         []string
	Category        Category
	AnalyzedAt      time.Time
	ExpiresAt       time.Time
}
