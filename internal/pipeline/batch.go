package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tailor-engine/internal/scrape/util"
)

const (
	DefaultConcurrency = 4
	perPostingTimeout  = time.Minute
)

var ErrJunkURL = errors.New("not a posting url")

type BatchItem struct {
	URL    string
	Result Result
	Err    error
}

// RunMany processes urls with at most limit in flight. Items come back in
// input order; duplicate URLs (after canonicalisation) are processed once and
// reported with the first result.
func (r *Runner) RunMany(ctx context.Context, reqID string, urls []string, limit int) []BatchItem {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	items := make([]BatchItem, len(urls))
	firstIdx := map[string]int{}
	dupOf := make([]int, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, u := range urls {
		items[i].URL = u
		dupOf[i] = -1

		if util.IsJunkURL(u) {
			items[i].Err = ErrJunkURL
			continue
		}
		key := util.CanonicalizeURL(u)
		if j, ok := firstIdx[key]; ok {
			dupOf[i] = j
			continue
		}
		firstIdx[key] = i

		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, perPostingTimeout)
			defer cancel()

			res, err := r.Run(pctx, reqID, u)
			if err != nil {
				r.log().Warn("posting failed", zap.String("url", u), zap.Error(err))
			}
			items[i].Result = res
			items[i].Err = err
			// one bad posting never cancels the rest
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range dupOf {
		if j >= 0 {
			items[i].Result = items[j].Result
			items[i].Err = items[j].Err
		}
	}
	return items
}
