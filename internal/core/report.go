package core

import (
	"fmt"
	"sort"
	"strings"
)

// ReportConfig holds the thresholds used when building a digest report
type ReportConfig struct {
	// TopK is how many emails the importance ranking keeps
	TopK int

	// SpamScoreThreshold is the score above which an email counts
	// towards the spam ratio
	SpamScoreThreshold int

	// MinSpamCount suppresses the spam section unless strictly more
	// than this many emails were tagged as spam
	MinSpamCount int
}

// DefaultReportConfig returns the stock digest thresholds
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		TopK:               5,
		SpamScoreThreshold: 70,
		MinSpamCount:       1,
	}
}

// BuildReport derives a digest report from a completed batch. It is a pure
// function of its inputs: the same results always produce the same report,
// regardless of the order the batch completed in. Ties in the importance
// ranking are broken by dispatch position, ties in the histogram by
// category declaration order.
func BuildReport(results []*EmailAnalysis, totalRequested int, cfg ReportConfig) *Report {
	report := &Report{
		TotalRequested: totalRequested,
	}

	// Top-k by importance. Sorting by (score desc, position asc) is a
	// strict ordering, so the selection does not depend on result order.
	ranked := make([]*EmailAnalysis, len(results))
	copy(ranked, results)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ImportanceScore != ranked[j].ImportanceScore {
			return ranked[i].ImportanceScore > ranked[j].ImportanceScore
		}
		return ranked[i].Position < ranked[j].Position
	})
	k := cfg.TopK
	if k > len(ranked) {
		k = len(ranked)
	}
	report.TopEmails = ranked[:k]

	// Category histogram over every category, rendered buckets only
	counts := make([]int, len(Categories))
	for _, analysis := range results {
		counts[analysis.Category]++
		if analysis.SpamScore > cfg.SpamScoreThreshold {
			report.SpamCount++
		}
	}
	for _, category := range Categories {
		if counts[category] > 0 {
			report.CategoryCounts = append(report.CategoryCounts, CategoryCount{
				Category: category,
				Count:    counts[category],
			})
		}
	}
	sort.SliceStable(report.CategoryCounts, func(i, j int) bool {
		return report.CategoryCounts[i].Count > report.CategoryCounts[j].Count
	})

	if report.SpamCount <= cfg.MinSpamCount {
		report.SpamCount = 0
	}

	return report
}

const bodyTemplate = `Your mail digest

After analyzing %d emails on your behalf, here's a summary:

The top %d most important/urgent
%s

Here's the distribution of detected categories
%s
%s`

// Subject returns the digest email subject line
func (r *Report) Subject() string {
	return fmt.Sprintf("Mail digest (latest %d emails)", r.TotalRequested)
}

// Body renders the digest email body
func (r *Report) Body() string {
	var top strings.Builder
	for _, analysis := range r.TopEmails {
		top.WriteString(formatEmailPlainText(analysis))
	}

	var categories strings.Builder
	for _, bucket := range r.CategoryCounts {
		fmt.Fprintf(&categories, "- %s: %d\n", bucket.Category, bucket.Count)
	}

	spam := ""
	if r.SpamCount > 0 {
		spam = fmt.Sprintf("\n%d out of %d (%.2f%%) of all analyzed emails tagged as SPAM.\n",
			r.SpamCount, r.TotalRequested,
			float64(r.SpamCount)/float64(r.TotalRequested)*100)
	}

	return fmt.Sprintf(bodyTemplate, r.TotalRequested, len(r.TopEmails),
		top.String(), categories.String(), spam)
}

func formatEmailPlainText(analysis *EmailAnalysis) string {
	return fmt.Sprintf(`
from: %s
date: %s
subject: %s
summary:
    %s
`,
		analysis.Email.From,
		analysis.Email.Date,
		analysis.Email.Subject,
		strings.Join(analysis.Summary, "\n    "))
}
