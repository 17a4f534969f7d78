package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/deepakdgupta1/knowcode/internal/chunker"
	"github.com/deepakdgupta1/knowcode/internal/frontend"
	"github.com/deepakdgupta1/knowcode/internal/graphbuilder"
	"github.com/deepakdgupta1/knowcode/internal/model"
	"github.com/deepakdgupta1/knowcode/internal/scanner"
)

// embedBatchSize mirrors the teacher's embedding sub-batch size.
const embedBatchSize = 32

// Stats reports one analyze run's results.
type Stats struct {
	FilesTotal   int
	FilesIndexed int
	FilesSkipped int
	ChunksTotal  int
	ParseErrors  int
}

// fileWork is a file that needs (re-)parsing: its hash differs from the
// ledger's, or it's new.
type fileWork struct {
	file scanner.File
	hash string
	src  []byte
}

// parsedFile is one file's parse result plus the raw chunks derived from it.
type parsedFile struct {
	work   fileWork
	result frontend.ParseResult
	chunks []model.Chunk
}

// Analyze walks e.cfg.Root, parses every file whose content hash changed
// since the last run, resolves the project-wide semantic graph, and embeds
// and indexes the resulting chunks. It never aborts over a single bad file:
// parse and chunk errors are counted in Stats and logged, not returned.
func (e *Engine) Analyze(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	fileCh, skippedCh, scanErrCh := scanner.Scan(e.cfg.Root)

	// Stage 1: hash + staleness check (N workers).
	workCh := make(chan fileWork, e.cfg.Workers)
	var hashWg sync.WaitGroup
	for range e.cfg.Workers {
		hashWg.Add(1)
		go func() {
			defer hashWg.Done()
			for f := range fileCh {
				stats.FilesTotal++
				src, err := os.ReadFile(f.Path)
				if err != nil {
					e.log.Warn("read failed", zap.String("path", f.RelPath), zap.Error(err))
					continue
				}
				sum := sha256.Sum256(src)
				hash := hex.EncodeToString(sum[:])

				if existing, err := e.files.Hash(f.RelPath); err == nil && existing == hash {
					continue // unchanged since last analyze
				}
				workCh <- fileWork{file: f, hash: hash, src: src}
			}
		}()
	}
	go func() {
		hashWg.Wait()
		close(workCh)
	}()

	// Stage 2: parse + chunk (N workers). Entities and local relations from
	// every file must be visible before graph resolution runs, so this
	// stage fans in to a single slice rather than streaming straight to
	// storage, unlike the teacher's fully-streaming pipeline.
	parsedCh := make(chan parsedFile, e.cfg.Workers)
	var parseWg sync.WaitGroup
	for range e.cfg.Workers {
		parseWg.Add(1)
		go func() {
			defer parseWg.Done()
			for w := range workCh {
				fe, ok := e.registry.Lookup(w.file.Language)
				if !ok {
					continue
				}
				result, err := fe.Parse(w.file.RelPath, w.src)
				if err != nil {
					e.log.Warn("parse failed", zap.String("path", w.file.RelPath), zap.Error(err))
					continue
				}
				stats.ParseErrors += len(result.ParseErrors)
				chunks := chunker.Build(w.file.RelPath, w.src, result)
				parsedCh <- parsedFile{work: w, result: result, chunks: chunks}
			}
		}()
	}
	go func() {
		parseWg.Wait()
		close(parsedCh)
	}()

	var parsedFiles []parsedFile
	for p := range parsedCh {
		parsedFiles = append(parsedFiles, p)
	}

	if err := <-scanErrCh; err != nil {
		return nil, fmt.Errorf("scan %s: %w", e.cfg.Root, err)
	}
	for range skippedCh {
		stats.FilesSkipped++
	}

	// Stage 3: resolve the project-wide semantic graph (single-threaded —
	// call/import/inherit targets can live in any file).
	var allEntities []model.Entity
	var allLocals []model.LocalRelation
	for _, p := range parsedFiles {
		allEntities = append(allEntities, p.result.Entities...)
		allEntities = append(allEntities, p.result.ParseErrors...)
		allLocals = append(allLocals, p.result.Relations...)
	}
	relationships := graphbuilder.Resolve(allEntities, allLocals)

	if violations := graphbuilder.VerifyContainsForest(allEntities, relationships); len(violations) > 0 {
		for _, v := range violations {
			e.log.Warn("contains-forest violation", zap.String("entity", v.EntityID), zap.String("reason", v.Reason))
		}
	}

	for _, ent := range allEntities {
		e.graph.AddEntity(ent)
	}
	for _, rel := range relationships {
		e.graph.AddRelationship(rel)
	}

	e.ingestOptionalSignals(allEntities)

	// Stage 4: embed + index (single embedding worker, mirroring the
	// teacher's rate-limit-conscious serialized embed stage).
	for _, p := range parsedFiles {
		if err := e.indexFile(ctx, p); err != nil {
			e.log.Warn("index file failed", zap.String("path", p.work.file.RelPath), zap.Error(err))
			continue
		}
		stats.FilesIndexed++
		stats.ChunksTotal += len(p.chunks)
		if err := e.files.Upsert(p.work.file.RelPath, p.work.hash, p.work.file.Language); err != nil {
			e.log.Warn("ledger upsert failed", zap.String("path", p.work.file.RelPath), zap.Error(err))
		}
	}

	return stats, nil
}

func (e *Engine) indexFile(ctx context.Context, p parsedFile) error {
	ids := make([]string, len(p.chunks))
	e.chunksMu.Lock()
	for i, c := range p.chunks {
		e.chunks[c.ID] = c
		ids[i] = c.ID
	}
	e.fileChunks[p.work.file.RelPath] = ids
	e.chunksMu.Unlock()

	for _, c := range p.chunks {
		e.lex.Add(c.ID, c.Text)
	}

	if e.embed == nil || len(p.chunks) == 0 {
		return nil
	}

	texts := make([]string, len(p.chunks))
	for i, c := range p.chunks {
		texts[i] = c.Text
	}

	var records []model.VectorRecord
	for i := 0; i < len(texts); i += embedBatchSize {
		end := min(i+embedBatchSize, len(texts))
		embeddings, err := e.embed.Embed(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}
		for j, vec := range embeddings {
			records = append(records, model.VectorRecord{ChunkID: p.chunks[i+j].ID, Vector: vec})
		}
	}
	return e.vectors.Add(records)
}

// ingestOptionalSignals runs the post-analyze graph enrichment passes that
// the spec names but leaves optional: coverage ingestion when a Cobertura
// report path is configured, and git-history temporal ingestion when a
// commit limit is configured. Failures here degrade the feature, not the
// analyze run as a whole.
func (e *Engine) ingestOptionalSignals(projectEntities []model.Entity) {
	if e.cfg.CoverageXMLPath != "" {
		entities, rels, err := graphbuilder.IngestCobertura(e.cfg.CoverageXMLPath, projectEntities)
		if err != nil {
			e.log.Warn("coverage ingestion failed", zap.Error(err))
		} else {
			for _, ent := range entities {
				e.graph.AddEntity(ent)
			}
			for _, rel := range rels {
				e.graph.AddRelationship(rel)
			}
		}
	}

	if e.cfg.GitHistoryLimit > 0 {
		entities, rels, err := graphbuilder.IngestGitHistory(e.cfg.Root, projectEntities, e.cfg.GitHistoryLimit)
		if err != nil {
			e.log.Warn("git history ingestion failed", zap.Error(err))
		} else {
			for _, ent := range entities {
				e.graph.AddEntity(ent)
			}
			for _, rel := range rels {
				e.graph.AddRelationship(rel)
			}
		}
	}
}

func defaultWorkers() int { return runtime.NumCPU() }
