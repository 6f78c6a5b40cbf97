package domain

// RetrievalCandidate pairs a passage with its similarity score relative to
// one retrieval query. Candidates are ephemeral: produced per question and
// discarded after reranking.
type RetrievalCandidate struct {
	// Passage is the retrieved passage.
	Passage Passage

	// Similarity is the cosine similarity to the retrieval query (0-1).
	Similarity float64

	// Rank is the position in the merged retrieval ordering, used as a
	// stable tiebreak downstream.
	Rank int
}

// RankedPassage pairs a passage with the relevance score assigned by the
// reranking judge. Ordered descending by score, ties broken by retrieval rank.
type RankedPassage struct {
	// Passage is the reranked passage.
	Passage Passage

	// Score is the judge's relevance score.
	Score float64

	// Scored is false when the judge did not assign a score and the
	// retrieval similarity was carried instead.
	Scored bool
}
