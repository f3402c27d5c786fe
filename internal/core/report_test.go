package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisAt(position int, importance, spam int, category Category) *EmailAnalysis {
	return &EmailAnalysis{
		Email: &Email{
			ID:      fmt.Sprintf("msg-%d", position),
			From:    fmt.Sprintf("sender%d@example.com", position),
			Subject: fmt.Sprintf("subject %d", position),
			Date:    "Mon, 02 Jan 2006 15:04:05 -0700",
		},
		Position:        position,
		ImportanceScore: importance,
		SpamScore:       spam,
		Category:        category,
	}
}

func TestBuildReportTopRankingBreaksTiesByDispatchOrder(t *testing.T) {
	// A(90) at position 0, C(40) at 1, D(90) at 2, B spam-scored 80 so
	// its importance is 0, at position 3.
	results := []*EmailAnalysis{
		analysisAt(0, 90, 0, CategoryWork),
		analysisAt(1, 40, 0, CategoryWork),
		analysisAt(2, 90, 0, CategoryPersonal),
		analysisAt(3, 0, 80, CategoryAds),
	}

	report := BuildReport(results, 4, DefaultReportConfig())

	require.Len(t, report.TopEmails, 4)
	assert.Equal(t, 0, report.TopEmails[0].Position) // A before D on equal scores
	assert.Equal(t, 2, report.TopEmails[1].Position)
	assert.Equal(t, 1, report.TopEmails[2].Position)
	assert.Equal(t, 3, report.TopEmails[3].Position) // B is ranked last, not excluded
}

func TestBuildReportTopRankingIgnoresArrivalOrder(t *testing.T) {
	forward := []*EmailAnalysis{
		analysisAt(0, 90, 0, CategoryWork),
		analysisAt(1, 90, 0, CategoryWork),
		analysisAt(2, 50, 0, CategoryWork),
	}
	shuffled := []*EmailAnalysis{forward[2], forward[1], forward[0]}

	a := BuildReport(forward, 3, DefaultReportConfig())
	b := BuildReport(shuffled, 3, DefaultReportConfig())

	require.Len(t, b.TopEmails, 3)
	for i := range a.TopEmails {
		assert.Equal(t, a.TopEmails[i].Position, b.TopEmails[i].Position)
	}
	assert.Equal(t, a.Body(), b.Body())
}

func TestBuildReportKeepsAtMostK(t *testing.T) {
	var results []*EmailAnalysis
	for i := 0; i < 9; i++ {
		results = append(results, analysisAt(i, i*10, 0, CategoryOther))
	}

	report := BuildReport(results, 9, DefaultReportConfig())

	require.Len(t, report.TopEmails, 5)
	assert.Equal(t, 80, report.TopEmails[0].ImportanceScore)
	assert.Equal(t, 40, report.TopEmails[4].ImportanceScore)
}

func TestBuildReportHistogramCountsEveryResult(t *testing.T) {
	results := []*EmailAnalysis{
		analysisAt(0, 0, 0, CategoryNews),
		analysisAt(1, 0, 0, CategoryNews),
		analysisAt(2, 0, 0, CategoryNews),
		analysisAt(3, 0, 0, CategoryWork),
		analysisAt(4, 0, 0, CategoryPersonal),
		analysisAt(5, 0, 0, CategoryWork),
	}

	report := BuildReport(results, 6, DefaultReportConfig())

	total := 0
	for _, bucket := range report.CategoryCounts {
		assert.Greater(t, bucket.Count, 0, "zero-count categories are not rendered")
		total += bucket.Count
	}
	assert.Equal(t, len(results), total)

	// Sorted by descending count; the Work/Personal tie would be broken
	// by declaration order if counts were equal.
	require.Len(t, report.CategoryCounts, 3)
	assert.Equal(t, CategoryNews, report.CategoryCounts[0].Category)
	assert.Equal(t, CategoryWork, report.CategoryCounts[1].Category)
	assert.Equal(t, CategoryPersonal, report.CategoryCounts[2].Category)
}

func TestBuildReportHistogramTieBrokenByDeclarationOrder(t *testing.T) {
	results := []*EmailAnalysis{
		analysisAt(0, 0, 0, CategoryOther),
		analysisAt(1, 0, 0, CategoryPersonal),
	}

	report := BuildReport(results, 2, DefaultReportConfig())

	require.Len(t, report.CategoryCounts, 2)
	assert.Equal(t, CategoryPersonal, report.CategoryCounts[0].Category)
	assert.Equal(t, CategoryOther, report.CategoryCounts[1].Category)
}

func TestBuildReportSpamSectionRequiresMoreThanOne(t *testing.T) {
	one := []*EmailAnalysis{
		analysisAt(0, 0, 95, CategoryAds),
		analysisAt(1, 0, 10, CategoryWork),
	}
	report := BuildReport(one, 2, DefaultReportConfig())
	assert.Equal(t, 0, report.SpamCount)
	assert.NotContains(t, report.Body(), "tagged as SPAM")

	two := []*EmailAnalysis{
		analysisAt(0, 0, 95, CategoryAds),
		analysisAt(1, 0, 71, CategoryAds),
		analysisAt(2, 0, 70, CategoryWork), // at the threshold, not above it
		analysisAt(3, 0, 10, CategoryWork),
	}
	report = BuildReport(two, 4, DefaultReportConfig())
	assert.Equal(t, 2, report.SpamCount)
	assert.Contains(t, report.Body(), "2 out of 4 (50.00%) of all analyzed emails tagged as SPAM.")
}

func TestReportRenderingIsIdempotent(t *testing.T) {
	results := []*EmailAnalysis{
		analysisAt(0, 90, 0, CategoryWork),
		analysisAt(1, 20, 80, CategoryAds),
		analysisAt(2, 65, 75, CategoryNews),
	}
	results[0].Summary = []string{"first point", "second point"}

	first := BuildReport(results, 3, DefaultReportConfig())
	second := BuildReport(results, 3, DefaultReportConfig())

	assert.Equal(t, first.Subject(), second.Subject())
	assert.Equal(t, first.Body(), second.Body())
	assert.Equal(t, first.Body(), first.Body())
}

func TestReportBodyContainsTopEmailDetails(t *testing.T) {
	analysis := analysisAt(0, 90, 0, CategoryWork)
	analysis.Summary = []string{"renew the certificate", "reply before Friday"}

	report := BuildReport([]*EmailAnalysis{analysis}, 1, DefaultReportConfig())
	body := report.Body()

	assert.Contains(t, body, "from: sender0@example.com")
	assert.Contains(t, body, "subject: subject 0")
	assert.Contains(t, body, "renew the certificate\n    reply before Friday")
	assert.Contains(t, body, "- Work: 1")
	assert.Equal(t, "Mail digest (latest 1 emails)", report.Subject())
}
