// Package engine wires the scanner, parser frontends, chunker, graph
// builder, embedding providers, and retrieval indices into the concurrent
// analyze pipeline and the logical query API described in the external
// interfaces design. It generalizes the teacher's internal/index package:
// the same stage-per-goroutine pipeline shape, rebuilt around the semantic
// graph instead of a flat chunk/embedding table pair.
package engine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/deepakdgupta1/knowcode/internal/config"
	"github.com/deepakdgupta1/knowcode/internal/context"
	"github.com/deepakdgupta1/knowcode/internal/embedder"
	"github.com/deepakdgupta1/knowcode/internal/frontend"
	"github.com/deepakdgupta1/knowcode/internal/frontend/languages"
	"github.com/deepakdgupta1/knowcode/internal/indexstore"
	"github.com/deepakdgupta1/knowcode/internal/knowledge"
	"github.com/deepakdgupta1/knowcode/internal/lexical"
	"github.com/deepakdgupta1/knowcode/internal/model"
	"github.com/deepakdgupta1/knowcode/internal/vectorindex"
)

// Config configures one Engine instance.
type Config struct {
	// Root is the analyzed project's root directory.
	Root string
	// StateDir holds the file-hash ledger and vector index databases,
	// typically "<root>/.knowcode".
	StateDir string
	// Workers bounds the analyze pipeline's parallel stages; <= 0 means
	// runtime.NumCPU.
	Workers int
	// Settings is the loaded knowcode.yaml document.
	Settings config.Config
	Logger   *zap.Logger

	// CoverageXMLPath, when set, points at a Cobertura XML report ingested
	// as a post-analyze step (coverage_report entities plus covers/
	// executed_by edges). Optional: most analyze runs have no report yet.
	CoverageXMLPath string
	// GitHistoryLimit, when > 0, enables temporal ingestion (commit/author
	// entities, authored/modified/changed_by edges) over the last N
	// commits touching the root. 0 disables it.
	GitHistoryLimit int
}

// Engine is the long-lived object a CLI command or watcher holds: the
// analyze pipeline plus every retrieval-time collaborator.
type Engine struct {
	cfg Config
	log *zap.Logger

	registry *frontend.Registry
	files    *indexstore.Store
	vectors  *vectorindex.Index
	lex      *lexical.Index
	graph    *knowledge.Store
	embed    embedder.Provider
	tokens   *context.TokenCounter
	synth    *context.Synthesizer

	chunksMu   sync.RWMutex
	chunks     map[string]model.Chunk // chunk id -> chunk, for anchor/rerank lookups
	fileChunks map[string][]string    // file relpath -> chunk ids it currently owns
}

// New opens or creates the engine's on-disk state and selects an embedding
// provider from cfg.Settings. A missing credential for the configured
// provider degrades embedding (searches fall back to lexical-only) rather
// than failing construction, per the error handling design's propagation
// policy for missing credentials.
func New(cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers()
	}

	files, err := indexstore.Open(cfg.StateDir + "/files.db")
	if err != nil {
		return nil, fmt.Errorf("open file ledger: %w", err)
	}

	prov, dimension := selectEmbeddingProvider(cfg.Settings, cfg.Logger)

	vectors, err := vectorindex.Open(cfg.StateDir+"/vectors.db", dimension)
	if err != nil {
		files.Close()
		return nil, fmt.Errorf("open vector index: %w", err)
	}

	tokens, err := context.NewTokenCounter()
	if err != nil {
		cfg.Logger.Warn("token counter unavailable, falling back to estimation", zap.Error(err))
	}

	graph := knowledge.New()
	e := &Engine{
		cfg:        cfg,
		log:        cfg.Logger,
		registry:   languages.Default(),
		files:      files,
		vectors:    vectors,
		lex:        lexical.New(),
		graph:      graph,
		embed:      prov,
		tokens:     tokens,
		chunks:     make(map[string]model.Chunk),
		fileChunks: make(map[string][]string),
	}
	e.synth = context.New(graph, tokens)
	return e, nil
}

// Close releases every on-disk resource the engine holds.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.vectors.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.files.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func selectEmbeddingProvider(cfg config.Config, log *zap.Logger) (embedder.Provider, int) {
	const fallbackDimension = 1024

	if len(cfg.EmbeddingModels) == 0 {
		log.Warn("no embedding models configured, search will be lexical-only")
		return nil, fallbackDimension
	}

	m := cfg.EmbeddingModels[0]

	if m.Provider == "ollama" {
		return embedder.NewOllamaProvider(m.BaseURL, m.Name, fallbackDimension), fallbackDimension
	}

	key, ok := m.ResolveCredential()
	if !ok {
		log.Warn("embedding credential missing, search will be lexical-only",
			zap.String("model", m.Name), zap.String("api_key_env", m.APIKeyEnv))
		return nil, fallbackDimension
	}

	switch m.Provider {
	case "openai":
		return embedder.NewOpenAIProvider(key, m.Name, fallbackDimension), fallbackDimension
	case "voyageai", "":
		return embedder.NewVoyageAIProvider(key, m.Name, fallbackDimension), fallbackDimension
	default:
		log.Warn("unrecognized embedding provider, search will be lexical-only", zap.String("provider", m.Provider))
		return nil, fallbackDimension
	}
}
