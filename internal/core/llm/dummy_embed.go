package llm

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/steentj/dho-sub001/internal/core"
)

const dummyTable = "chunks_dummy"

var _ core.EmbeddingProvider = (*DummyEmbedder)(nil)

// DummyEmbedder derives a unit vector from a hash of the text. Equal texts
// always get equal vectors and no network is involved.
type DummyEmbedder struct {
	binding
}

func NewDummyEmbedder(dim int) *DummyEmbedder {
	if dim <= 0 {
		dim = DefaultOpenAIDimensions
	}
	return &DummyEmbedder{binding: binding{name: string(ProviderDummy), table: dummyTable, dim: dim}}
}

func (d *DummyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := float64(h.Sum64()%100_003) / 100_003

	vec := make([]float32, d.dim)
	var norm float64
	for i := range vec {
		v := math.Sin(seed*1000 + float64(i)*0.7)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}
