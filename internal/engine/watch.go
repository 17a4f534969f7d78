package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/deepakdgupta1/knowcode/internal/chunker"
	"github.com/deepakdgupta1/knowcode/internal/scanner"
	"github.com/deepakdgupta1/knowcode/internal/watcher"
)

// Watch starts an fsnotify-backed watcher over e.cfg.Root and incrementally
// re-indexes affected files as coalesced batches arrive, per §4.12: chunks
// are recomputed for changed files, obsolete chunks and vectors are
// removed, new chunks are embedded and inserted, and the lexical index is
// updated incrementally. It never touches the semantic graph — a full
// Analyze rebuilds that — so a long-running watch session keeps retrieval
// current without repeatedly re-resolving cross-file relationships.
//
// Watch blocks until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, debounceMS int) error {
	w, err := watcher.New(e.cfg.Root, debounceMS, func(batch []watcher.Event) {
		e.handleWatchBatch(ctx, batch)
	}, e.log)
	if err != nil {
		return err
	}
	defer w.Close()

	go w.Run()

	<-ctx.Done()
	return nil
}

func (e *Engine) handleWatchBatch(ctx context.Context, batch []watcher.Event) {
	for _, ev := range batch {
		relPath, err := filepath.Rel(e.cfg.Root, ev.Path)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)

		switch ev.Type {
		case watcher.EventRemove, watcher.EventRename:
			if err := e.removeFile(relPath); err != nil {
				e.log.Warn("watch remove failed", zap.String("path", relPath), zap.Error(err))
			}
		case watcher.EventCreate, watcher.EventWrite:
			if err := e.reindexFile(ctx, relPath); err != nil {
				e.log.Warn("watch reindex failed", zap.String("path", relPath), zap.Error(err))
			}
		}
	}
}

// reindexFile recomputes chunks for one file and applies them with
// add-then-swap atomicity: new chunks are embedded and inserted into the
// vector and lexical indices before the file's previous chunk ids (now
// stale) are removed, so a concurrent query never sees a gap.
func (e *Engine) reindexFile(ctx context.Context, relPath string) error {
	absPath := filepath.Join(e.cfg.Root, relPath)
	src, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return e.removeFile(relPath)
		}
		return err
	}

	lang, ok := scanner.Languages()[extOf(relPath)]
	if !ok {
		return nil
	}
	fe, ok := e.registry.Lookup(lang)
	if !ok {
		return nil
	}

	result, err := fe.Parse(relPath, src)
	if err != nil {
		return err
	}
	chunks := chunker.Build(relPath, src, result)

	e.chunksMu.RLock()
	oldIDs := append([]string(nil), e.fileChunks[relPath]...)
	e.chunksMu.RUnlock()

	if err := e.indexFile(ctx, parsedFile{
		work:   fileWork{file: scanner.File{Path: absPath, RelPath: relPath, Language: lang}},
		result: result,
		chunks: chunks,
	}); err != nil {
		return err
	}

	newSet := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		newSet[c.ID] = true
	}
	var stale []string
	for _, id := range oldIDs {
		if !newSet[id] {
			stale = append(stale, id)
		}
	}

	e.removeChunks(stale)

	sum := sha256.Sum256(src)
	return e.files.Upsert(relPath, hex.EncodeToString(sum[:]), lang)
}

// removeFile drops every chunk a deleted file owned and its ledger entry.
func (e *Engine) removeFile(relPath string) error {
	e.chunksMu.Lock()
	ids := e.fileChunks[relPath]
	delete(e.fileChunks, relPath)
	e.chunksMu.Unlock()

	e.removeChunks(ids)
	return e.files.Remove(relPath)
}

func (e *Engine) removeChunks(ids []string) {
	if len(ids) == 0 {
		return
	}
	if err := e.vectors.Remove(ids); err != nil {
		e.log.Warn("vector removal failed", zap.Error(err))
	}
	for _, id := range ids {
		e.lex.Remove(id)
	}

	e.chunksMu.Lock()
	for _, id := range ids {
		delete(e.chunks, id)
	}
	e.chunksMu.Unlock()
}

func extOf(relPath string) string {
	ext := filepath.Ext(relPath)
	if len(ext) > 0 {
		return ext[1:]
	}
	return ""
}
