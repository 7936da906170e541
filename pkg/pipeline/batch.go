package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/mnemonic-image-kit/pkg/domain"
)

// Result はバッチ内の1リクエスト分の結果です。
type Result struct {
	Request domain.GenerationRequest
	Path    string
	Err     error
}

// BatchOptions は GenerateAll の並列数とレート制限です。
type BatchOptions struct {
	Concurrency int
	// Limiter が nil の場合はレート制限を行いません。
	Limiter *rate.Limiter
}

// GenerateAll は独立した呼び出しとして reqs を並列に処理し、入力順に結果を返します。
// 1件の失敗が他の呼び出しを止めることはありません。
func (p *Pipeline) GenerateAll(ctx context.Context, reqs []domain.GenerationRequest, opts BatchOptions) []Result {
	results := make([]Result, len(reqs))

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, req := range reqs {
		g.Go(func() error {
			results[i].Request = req
			if opts.Limiter != nil {
				if err := opts.Limiter.Wait(ctx); err != nil {
					results[i].Err = err
					return nil
				}
			}
			results[i].Path, results[i].Err = p.Generate(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
