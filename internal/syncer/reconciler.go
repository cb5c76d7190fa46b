// Package syncer reconciles the extracted survey rows against the petition
// directory. This is where the system's invariants live: at most one
// document per response id, idempotent re-runs, and renames that never
// duplicate or lose a document.
package syncer

import (
	"bytes"

	"github.com/civiclab/qualsync/internal/document"
	"github.com/civiclab/qualsync/internal/naming"
	"github.com/civiclab/qualsync/internal/observability"
	"github.com/civiclab/qualsync/pkg/models"
)

// Summary reports what one reconciliation pass did, or in dry-run mode,
// what it would have done. Dry-run and real runs over the same input
// produce identical summaries.
type Summary struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
}

// Reconciler brings the document set into agreement with a row set.
type Reconciler struct {
	store    *document.Store
	resolver naming.Resolver
	log      observability.EventLog // nil disables events
}

// New creates a Reconciler over a scanned store. log may be nil.
func New(store *document.Store, resolver naming.Resolver, log observability.EventLog) *Reconciler {
	return &Reconciler{store: store, resolver: resolver, log: log}
}

// Reconcile processes rows in input order: ineligible or incomplete rows
// are skipped; each remaining row is resolved to a target path, renamed
// there if its current path differs, and written only when the rendered
// bytes differ from what is on disk. In dry-run mode every decision and
// comparison runs identically but no filesystem mutation happens.
//
// Filesystem errors abort the pass; documents already written stay as
// they are. There is no rollback.
func (r *Reconciler) Reconcile(rows []models.SurveyRow, dryRun bool) (Summary, error) {
	var sum Summary

	// pending holds the rendered bytes each path would carry after the rows
	// processed so far. Consulting it before the disk keeps dry-run
	// decisions identical to a real run even when suppressed writes would
	// have changed what a later row compares against.
	pending := make(map[string][]byte)
	readState := func(path string) ([]byte, bool, error) {
		if data, ok := pending[path]; ok {
			return data, true, nil
		}
		return r.store.Read(path)
	}

	for _, row := range rows {
		sum.Processed++

		// Data-quality problems are skips, never errors.
		if !row.Eligible || row.Title == "" || row.Body == "" || row.ResponseID == "" {
			sum.Skipped++
			continue
		}

		current, exists := r.store.Lookup(row.ResponseID)
		target := r.resolver.Resolve(row.Title, row.ResponseID, current)

		moved := exists && current != target
		if moved && !dryRun {
			if err := r.store.Rename(current, target); err != nil {
				return sum, err
			}
			observability.Emit(r.log, "document.renamed", map[string]any{
				"response_id": row.ResponseID,
				"from":        current,
				"to":          target,
			})
		}

		rendered := document.Render(row)

		// In dry-run mode the rename did not happen, so the bytes to
		// compare still live at the old path.
		baseline := target
		if moved && dryRun {
			baseline = current
		}
		onDisk, found, err := readState(baseline)
		if err != nil {
			return sum, err
		}

		unchanged := found && bytes.Equal(onDisk, rendered)
		if unchanged && !moved {
			sum.Skipped++
			pending[target] = rendered
			r.store.Claim(row.ResponseID, target)
			continue
		}

		if !dryRun && !unchanged {
			if err := r.store.Write(target, rendered); err != nil {
				return sum, err
			}
		}
		pending[target] = rendered

		if exists {
			sum.Updated++
			observability.Emit(r.log, "document.updated", map[string]any{
				"response_id": row.ResponseID,
				"path":        target,
			})
		} else {
			sum.Created++
			observability.Emit(r.log, "document.created", map[string]any{
				"response_id": row.ResponseID,
				"path":        target,
			})
		}
		r.store.Claim(row.ResponseID, target)
	}

	return sum, nil
}
