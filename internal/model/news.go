package model

// NewsItem is a single article or press release returned by a news source.
// URL is the dedup key within any result list.
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      string `json:"source"`
	Summary     string `json:"summary,omitempty"`
}

// PestleNews holds topic news for the three queried PESTLE buckets.
type PestleNews struct {
	Regulation   []NewsItem `json:"regulation"`
	ClientMarket []NewsItem `json:"clientMarket"`
	Industry     []NewsItem `json:"industry"`
}

// All concatenates the buckets in regulation, clientMarket, industry order.
func (p PestleNews) All() []NewsItem {
	out := make([]NewsItem, 0, len(p.Regulation)+len(p.ClientMarket)+len(p.Industry))
	out = append(out, p.Regulation...)
	out = append(out, p.ClientMarket...)
	out = append(out, p.Industry...)
	return out
}
