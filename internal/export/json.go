package export

import (
	"encoding/json"

	"github.com/hyperifyio/newsdigest/internal/article"
	"github.com/hyperifyio/newsdigest/internal/summarize"
)

type jsonDoc struct {
	article.View
	Summary        string           `json:"summary,omitempty"`
	SummaryOutcome string           `json:"summary_outcome,omitempty"`
	Stats          *summarize.Stats `json:"stats,omitempty"`
}

// JSON renders the article view with the summary and its statistics.
func JSON(b Bundle) ([]byte, error) {
	doc := jsonDoc{View: b.Article.View(), Summary: b.summaryText(), Stats: b.stats()}
	if b.Summary != nil {
		doc.SummaryOutcome = b.Summary.Outcome.String()
	}
	return json.MarshalIndent(doc, "", "  ")
}
