package staging

import (
	"context"
	"fmt"

	"github.com/dkarademir/docstage/internal/ledger"
	"github.com/dkarademir/docstage/internal/logging"
	"github.com/dkarademir/docstage/internal/models"
)

// Decision is the operator's answer to a staging name collision.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionOverwrite
	DecisionCancel
)

// ConflictDecider is asked once per name collision. DecisionCancel abandons
// the remainder of the batch; files already accepted stay accepted.
type ConflictDecider interface {
	Decide(filename string) Decision
}

// DeciderFunc adapts a plain function to ConflictDecider.
type DeciderFunc func(filename string) Decision

func (f DeciderFunc) Decide(filename string) Decision { return f(filename) }

// SkipAll is the non-interactive default: every collision is skipped.
var SkipAll = DeciderFunc(func(string) Decision { return DecisionSkip })

// Result summarizes one Resolve batch.
type Result struct {
	Accepted  []string
	Skipped   []string
	Cancelled bool
}

// Resolver stages a batch of candidate paths, routing each through the
// extension filter, the collision decision, the content-hash check and
// finally the ledger insert.
type Resolver struct {
	store  *Store
	repo   ledger.Repository
	logger logging.Logger
}

func NewResolver(store *Store, repo ledger.Repository, logger logging.Logger) *Resolver {
	return &Resolver{store: store, repo: repo, logger: logger}
}

// Resolve stages each path in order. Unsupported or unreadable candidates
// are skipped and the batch continues; only a cancel decision or a ledger
// error stops it. One ledger row is appended per accepted file.
func (r *Resolver) Resolve(ctx context.Context, paths []string, user string, decider ConflictDecider) (*Result, error) {
	if decider == nil {
		decider = SkipAll
	}
	res := &Result{}

	for _, path := range paths {
		if !r.store.Supported(path) {
			r.logger.Debug(ctx, "unsupported extension, skipping", "path", path)
			res.Skipped = append(res.Skipped, path)
			continue
		}

		info, err := Inspect(path)
		if err != nil {
			r.logger.Warn(ctx, "cannot read candidate, skipping", "path", path, "error", err)
			res.Skipped = append(res.Skipped, path)
			continue
		}

		overwrite := false
		if r.store.Contains(info.Name) {
			switch decider.Decide(info.Name) {
			case DecisionCancel:
				res.Cancelled = true
				return res, nil
			case DecisionSkip:
				// the operator saw the duplicate: stamp it on the prior rows
				if err := r.repo.TouchDuplicate(ctx, info.Name); err != nil {
					return res, fmt.Errorf("record duplicate: %w", err)
				}
				res.Skipped = append(res.Skipped, path)
				continue
			case DecisionOverwrite:
				overwrite = true
			}
		}

		staged, err := r.store.Copy(path, overwrite)
		if err != nil {
			r.logger.Warn(ctx, "staging copy failed, skipping", "path", path, "error", err)
			res.Skipped = append(res.Skipped, path)
			continue
		}

		// bump prior rows before the new one exists, so the counter only
		// ever reflects earlier selections of the same name
		if overwrite {
			if err := r.repo.BumpOverwrite(ctx, info.Name); err != nil {
				return res, fmt.Errorf("record overwrite: %w", err)
			}
		}

		hashDup, err := r.repo.HasHash(ctx, info.ContentHash)
		if err != nil {
			return res, fmt.Errorf("hash lookup: %w", err)
		}

		rec := &models.StagedFile{
			Filename:     info.Name,
			ContentHash:  info.ContentHash,
			SizeBytes:    info.SizeBytes,
			Extension:    info.Extension,
			OwnerUser:    user,
			OriginalPath: path,
			LocalPath:    staged,
			IsDuplicate:  overwrite || hashDup,
		}
		if _, err := r.repo.InsertSelection(ctx, rec); err != nil {
			return res, fmt.Errorf("record selection: %w", err)
		}

		r.logger.Info(ctx, "file staged",
			"file", info.Name, "size", info.SizeBytes, "duplicate", rec.IsDuplicate)
		res.Accepted = append(res.Accepted, staged)
	}

	return res, nil
}
