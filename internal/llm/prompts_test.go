package llm

import (
	"testing"

	"github.com/mikey/mail-digest/internal/core"
	"github.com/mikey/mail-digest/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUnmarshalPlainObject(t *testing.T) {
	var resp PercentResponse
	require.NoError(t, Unmarshal(`{"percent": 42}`, &resp))
	assert.Equal(t, 42, resp.Percent)
}

func TestUnmarshalExtractsObjectFromProse(t *testing.T) {
	var resp SummaryResponse
	text := "Sure! Here is the summary:\n```json\n{\"main_points\": [\"a\", \"b\"]}\n```\nHope that helps."
	require.NoError(t, Unmarshal(text, &resp))
	assert.Equal(t, []string{"a", "b"}, resp.MainPoints)
}

func TestUnmarshalRejectsNonJSON(t *testing.T) {
	var resp PercentResponse
	assert.Error(t, Unmarshal("the email is probably spam", &resp))
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0, ClampPercent(-5))
	assert.Equal(t, 100, ClampPercent(250))
	assert.Equal(t, 60, ClampPercent(60))
}

func TestParseCategory(t *testing.T) {
	cases := map[string]core.Category{
		"Personal":                 core.CategoryPersonal,
		"work":                     core.CategoryWork,
		"Official Duties":          core.CategoryDuties,
		"Marketing and promotions": core.CategoryAds,
		"promotions":               core.CategoryAds,
		"News and newsletters":     core.CategoryNews,
		"Other":                    core.CategoryOther,
		"something unexpected":     core.CategoryOther,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseCategory(input), "input %q", input)
	}
}

func TestEmailJSONTruncatesBody(t *testing.T) {
	tp := utils.NewTextProcessor(zap.NewNop())
	email := &core.Email{
		From:    "a@example.com",
		Subject: "hi",
		Body:    string(make([]byte, 10000)),
	}

	encoded, err := EmailJSON(email, 64, tp)
	require.NoError(t, err)
	assert.Contains(t, encoded, "a@example.com")
	assert.Less(t, len(encoded), 1024)
}
