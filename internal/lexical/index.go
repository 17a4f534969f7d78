// Package lexical implements a BM25 sparse index over chunk text, the
// lexical half of the hybrid retriever. Ranking uses hand-rolled BM25
// rather than SQLite FTS5's built-in bm25() function: FTS5 does not expose
// tunable k1/b parameters, and this index's tokenizer (camelCase/snake_case
// subtoken expansion) needs control over what gets indexed as a term that
// an FTS5 virtual table's own tokenizer can't reproduce.
package lexical

import (
	"math"
	"sort"
	"sync"
)

const (
	k1 = 1.2
	b  = 0.75
)

// Hit is a single lexical match: a chunk id and its BM25 score.
type Hit struct {
	ChunkID string
	Score   float64
}

type posting struct {
	chunkID string
	count   int
}

// Index is an in-memory BM25 index over chunk texts, keyed by chunk id so
// it composes with the vector index and the graph builder's chunk-id
// granularity for incremental updates.
type Index struct {
	mu sync.RWMutex

	postings   map[string][]posting // term -> postings
	docLength  map[string]int       // chunk id -> token count
	docTerms   map[string]map[string]int // chunk id -> term -> count, for Remove
	totalDocs  int
	totalLength int
}

// New returns an empty lexical index.
func New() *Index {
	return &Index{
		postings:  make(map[string][]posting),
		docLength: make(map[string]int),
		docTerms:  make(map[string]map[string]int),
	}
}

// Add indexes or re-indexes a chunk's text under its chunk id. Re-adding an
// existing id first removes its prior postings so document length and term
// frequency stay consistent.
func (idx *Index) Add(chunkID, text string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.docLength[chunkID]; exists {
		idx.removeLocked(chunkID)
	}

	tokens := Tokenize(text)
	termCounts := make(map[string]int)
	for _, t := range tokens {
		termCounts[t]++
	}

	for term, count := range termCounts {
		idx.postings[term] = append(idx.postings[term], posting{chunkID: chunkID, count: count})
	}
	idx.docTerms[chunkID] = termCounts
	idx.docLength[chunkID] = len(tokens)
	idx.totalDocs++
	idx.totalLength += len(tokens)
}

// Remove deletes a chunk's postings from the index.
func (idx *Index) Remove(chunkID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(chunkID)
}

func (idx *Index) removeLocked(chunkID string) {
	terms, ok := idx.docTerms[chunkID]
	if !ok {
		return
	}
	for term := range terms {
		postings := idx.postings[term]
		filtered := postings[:0]
		for _, p := range postings {
			if p.chunkID != chunkID {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			delete(idx.postings, term)
		} else {
			idx.postings[term] = filtered
		}
	}
	idx.totalDocs--
	idx.totalLength -= idx.docLength[chunkID]
	delete(idx.docTerms, chunkID)
	delete(idx.docLength, chunkID)
}

// Search returns the top-k chunks by BM25 score for the given query.
func (idx *Index) Search(query string, k int) []Hit {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.totalDocs == 0 {
		return nil
	}
	avgDocLength := float64(idx.totalLength) / float64(idx.totalDocs)

	scores := make(map[string]float64)
	queryTerms := make(map[string]int)
	for _, t := range Tokenize(query) {
		queryTerms[t]++
	}

	for term := range queryTerms {
		postings, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := idfWeight(idx.totalDocs, len(postings))
		for _, p := range postings {
			dl := float64(idx.docLength[p.chunkID])
			tf := float64(p.count)
			denom := tf + k1*(1-b+b*dl/avgDocLength)
			scores[p.chunkID] += idf * (tf * (k1 + 1) / denom)
		}
	}

	hits := make([]Hit, 0, len(scores))
	for chunkID, score := range scores {
		hits = append(hits, Hit{ChunkID: chunkID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// idfWeight is the standard BM25 inverse document frequency term, clamped
// to stay non-negative for terms appearing in more than half the corpus.
func idfWeight(totalDocs, docFreq int) float64 {
	idf := math.Log(1 + (float64(totalDocs)-float64(docFreq)+0.5)/(float64(docFreq)+0.5))
	if idf < 0 {
		return 0
	}
	return idf
}

// Count returns the number of indexed documents.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.totalDocs
}
