// Package index provides an ephemeral in-memory retrieval index. An Index is
// built fresh for a single question, queried once, and discarded; nothing is
// shared across requests.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docqa/internal/text"
)

// Embedder maps text into a fixed-dimension vector space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index holds one vector per chunk, in chunk order.
type Index struct {
	embedder Embedder
	chunks   []text.Chunk
	vectors  [][]float32
}

// Build embeds every chunk and returns the populated index. O(n) in chunk
// count; any embedding failure aborts the build.
func Build(ctx context.Context, embedder Embedder, chunks []text.Chunk) (*Index, error) {
	ix := &Index{
		embedder: embedder,
		chunks:   chunks,
		vectors:  make([][]float32, 0, len(chunks)),
	}
	for _, c := range chunks {
		vec, err := embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", c.Seq, err)
		}
		ix.vectors = append(ix.vectors, vec)
	}
	return ix, nil
}

// Query embeds the question and returns up to k chunks ordered by descending
// cosine similarity, ties broken by original chunk order.
func (ix *Index) Query(ctx context.Context, question string, k int) ([]text.Chunk, error) {
	if k <= 0 {
		k = 4
	}
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	qv, err := ix.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	scores := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		scores[i] = cosine(v, qv)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Stable keeps the original chunk order for equal scores.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]text.Chunk, 0, k)
	for _, i := range order[:k] {
		results = append(results, ix.chunks[i])
	}
	return results, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
