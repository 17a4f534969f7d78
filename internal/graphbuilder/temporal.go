package graphbuilder

import (
	"bufio"
	"bytes"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

const logFieldSep = "\x1f"
const logRecordSep = "\x1e"

// IngestGitHistory walks the repository's commit log and produces commit
// and author entities plus authored/modified/changed_by edges linking
// authors and commits to the modules they touched. Modules that no longer
// exist in the current scan (renamed or deleted since that commit) are
// skipped rather than left dangling.
//
// A synthetic uuid keys each author entity since git carries no stable
// author identifier beyond a freeform name/email pair that can vary across
// commits; commit entities use the commit hash itself, which is already a
// stable, collision-resistant id.
func IngestGitHistory(repoRoot string, projectEntities []model.Entity, limit int) ([]model.Entity, []model.Relationship, error) {
	idx := buildIndex(projectEntities)

	format := strings.Join([]string{"%H", "%an", "%ae", "%aI"}, logFieldSep) + logRecordSep
	args := []string{"log", "--name-only", "--pretty=format:" + format, "-n", itoa(limit)}
	cmd := exec.Command("git", args...)
	cmd.Dir = repoRoot

	out, err := cmd.Output()
	if err != nil {
		return nil, nil, err
	}

	var entities []model.Entity
	var relationships []model.Relationship
	authorIDs := make(map[string]string)

	records := bytes.Split(out, []byte(logRecordSep))
	for _, rec := range records {
		rec = bytes.TrimLeft(rec, "\n")
		if len(rec) == 0 {
			continue
		}
		scanner := bufio.NewScanner(bytes.NewReader(rec))
		if !scanner.Scan() {
			continue
		}
		header := strings.Split(scanner.Text(), logFieldSep)
		if len(header) != 4 {
			continue
		}
		hash, author, email, authoredAt := header[0], header[1], header[2], header[3]

		authorKey := strings.ToLower(email)
		authorID, ok := authorIDs[authorKey]
		if !ok {
			authorID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(authorKey)).String()
			authorIDs[authorKey] = authorID
			entities = append(entities, model.Entity{
				ID:            authorID,
				Kind:          model.KindAuthor,
				Name:          author,
				QualifiedName: email,
				Attributes:    model.Attrs{"email": model.StringAttr(email)},
			})
		}

		commitID := "commit::" + hash
		entities = append(entities, model.Entity{
			ID:            commitID,
			Kind:          model.KindCommit,
			Name:          hash[:min(8, len(hash))],
			QualifiedName: hash,
			Attributes:    model.Attrs{"authored_at": model.StringAttr(authoredAt)},
		})
		relationships = append(relationships, model.Relationship{SourceID: authorID, TargetID: commitID, Kind: model.RelAuthored})

		for scanner.Scan() {
			path := strings.TrimSpace(scanner.Text())
			if path == "" {
				continue
			}
			moduleName := modulePathStem(path)
			mod, ok := idx.byModuleName[moduleName]
			if !ok {
				continue
			}
			relationships = append(relationships,
				model.Relationship{SourceID: commitID, TargetID: mod.ID, Kind: model.RelModified},
				model.Relationship{SourceID: mod.ID, TargetID: authorID, Kind: model.RelChangedBy},
			)
		}
	}

	return entities, relationships, nil
}

func modulePathStem(path string) string {
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return base
}

func itoa(n int) string {
	if n <= 0 {
		return "100"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
