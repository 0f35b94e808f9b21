package types

type ContentKind string

const (
	KindArticle ContentKind = "article"
	KindVideo   ContentKind = "video"
)

// SourceItem is one configured input. Origin is a page URL for articles
// and a local file path for audio items. SourceLang is set only on the
// non-English article that needs translation.
type SourceItem struct {
	Name       string      `json:"name"`
	Origin     string      `json:"origin"`
	Kind       ContentKind `json:"kind"`
	SourceLang string      `json:"source_lang,omitempty"`
}

func (s SourceItem) NeedsTranslation() bool {
	return s.SourceLang != "" && s.SourceLang != "en"
}

// Sentiment is one scoring result as returned by the provider: the
// dominant label plus all four scores from a single call.
type Sentiment struct {
	Label    string  `json:"label"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Mixed    float64 `json:"mixed"`
}

// SentimentRecord is one row of the aggregate results table.
type SentimentRecord struct {
	Source      string      `csv:"source" json:"source"`
	ContentType ContentKind `csv:"content_type" json:"content_type"`
	Sentiment   string      `csv:"sentiment" json:"sentiment"`
	Positive    float64     `csv:"positive" json:"positive"`
	Negative    float64     `csv:"negative" json:"negative"`
	Neutral     float64     `csv:"neutral" json:"neutral"`
	Mixed       float64     `csv:"mixed" json:"mixed"`
}

func NewSentimentRecord(item SourceItem, s Sentiment) SentimentRecord {
	return SentimentRecord{
		Source:      item.Name,
		ContentType: item.Kind,
		Sentiment:   s.Label,
		Positive:    s.Positive,
		Negative:    s.Negative,
		Neutral:     s.Neutral,
		Mixed:       s.Mixed,
	}
}
