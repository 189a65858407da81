// Package aggregate builds the corpus-wide key tree by walking documents on a
// bounded worker pool and merging the per-worker trees.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/valyala/fastjson"
	"golang.org/x/sync/errgroup"

	"github.com/usestring/jsonkeys/internal/corpus"
	"github.com/usestring/jsonkeys/pkg/keytree"
)

// Result is the outcome of aggregating a corpus.
type Result struct {
	Tree      *keytree.Tree
	Documents int // Documents walked into Tree
	Skipped   int // Documents that failed to load or parse
}

// partial is the state owned by one worker.
type partial struct {
	tree      *keytree.Tree
	documents int
	skipped   int
}

// Run walks every document of c into a single tree using at most workers
// goroutines. Unreadable or malformed documents are skipped silently.
// Run only fails when ctx is cancelled.
func Run(ctx context.Context, c *corpus.Corpus, workers int) (*Result, error) {
	start := time.Now()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, c.Len()))

	jobs := make(chan keytree.DocID)
	partials := make([]*partial, workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for _, id := range c.IDs() {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- id:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := range workers {
		part := &partial{tree: keytree.New()}
		partials[w] = part

		g.Go(func() error {
			var p fastjson.Parser
			for id := range jobs {
				v, err := c.Load(&p, id)
				if err != nil {
					slog.Debug("skipping document",
						slog.Int("worker", w),
						slog.String("path", c.Name(id)),
						slog.String("error", err.Error()),
					)
					part.skipped++
					continue
				}
				local := keytree.New()
				local.AddDocument(id, v)
				part.tree.Merge(local)
				part.documents++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("aggregating documents: %w", err)
	}

	trees := make([]*keytree.Tree, len(partials))
	res := &Result{}
	for i, part := range partials {
		trees[i] = part.tree
		res.Documents += part.documents
		res.Skipped += part.skipped
	}

	tree, err := Reduce(ctx, trees, workers)
	if err != nil {
		return nil, err
	}
	res.Tree = tree

	slog.Info("aggregation completed",
		slog.Int("documents", res.Documents),
		slog.Int("skipped", res.Skipped),
		slog.Int("workers", workers),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// Reduce merges trees pairwise in rounds, running up to workers merges of
// each round concurrently. The merge is associative and commutative, so the
// grouping does not affect the result. The input trees are consumed.
func Reduce(ctx context.Context, trees []*keytree.Tree, workers int) (*keytree.Tree, error) {
	if len(trees) == 0 {
		return keytree.New(), nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	for len(trees) > 1 {
		half := (len(trees) + 1) / 2

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i+half < len(trees); i++ {
			dst, src := trees[i], trees[i+half]
			g.Go(func() error {
				dst.Merge(src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reducing trees: %w", err)
		}
		trees = trees[:half]
	}
	return trees[0], nil
}
