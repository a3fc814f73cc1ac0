package matching

import (
	"context"

	"github.com/jobhelper/jobhelper/internal/embedding"
	"github.com/jobhelper/jobhelper/internal/jobstore"
)

// technicalScore embeds the job text and measures cosine similarity against
// the cached profile embedding. Cosine similarity is mathematically in
// [-1,1]; negative values are noise for semantically related texts, so the
// result clamps to [0,1] instead of passing sign through.
func (m *Matcher) technicalScore(ctx context.Context, job *jobstore.Job) (float64, error) {
	jobVec, err := m.embedder.Embed(ctx, job.EmbeddingText())
	if err != nil {
		return 0, err
	}

	return clamp01(embedding.CosineSimilarity(m.profileVec, jobVec)), nil
}
