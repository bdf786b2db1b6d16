package news

import (
	"context"

	"github.com/sells-group/lead-intel/internal/model"
)

// Source fetches news for a single query from one provider. A Source may
// return nil with a nil error when it deliberately skips a query.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]model.NewsItem, error)
}
