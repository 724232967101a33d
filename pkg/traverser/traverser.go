// Package traverser implements the generic pre-order walk every pipeline operation drives
// through a Visitor: COPY and DELETE walk a subtree fetched one folder level at a time from
// the metadata service, SHARE walks a locally extracted archive. Grounded on the source's NodeManager
// base class and its callers' Traverser(manager).traverse_tree(...) usage (operations
// package); the traverser.py module itself was not present in the retrieved source, so its
// walk order is reconstructed from how CopyPreparationManager/DeletePreparationManager
// implement process_file/process_folder/get_tree/exclude_nodes.
package traverser

import (
	"context"

	"github.com/pkg/errors"

	"github.com/PilotDataPlatform/pipelines-core/pkg/models"
)

// Visitor is implemented by every manager the Traverser drives: the two preparation
// managers (building a plan, issuing no mutations beyond folder creation) and the
// share-dataset manager (which both walks and mutates in a single pass).
type Visitor interface {
	// GetTree returns the direct children of folder, in whatever order the source
	// (metadata service or local filesystem) yields them.
	GetTree(ctx context.Context, folder models.Node) (models.NodeList, error)

	// ExcludeNodes returns the subset of ids from nodes that should be skipped at this
	// level. Preserves the source's degrade-to-empty behavior: an include-by-id filter
	// only applies when every included id is present in the current level's children;
	// otherwise nothing is excluded and the include restriction is effectively dropped
	// below the top level (see DESIGN.md, "preserved behaviors").
	ExcludeNodes(nodes models.NodeList) map[string]struct{}

	// ProcessFile handles one FILE child under destinationParent.
	ProcessFile(ctx context.Context, sourceFile models.Node, destinationParent models.Node) error

	// ProcessFolder handles one FOLDER child under destinationParent and returns the
	// corresponding destination node recursion should continue under.
	ProcessFolder(ctx context.Context, sourceFolder models.Node, destinationParent models.Node) (models.Node, error)
}

// Traverser drives a Visitor over a source tree in pre-order: a folder is processed (and,
// for COPY, registered) before its children are visited.
type Traverser struct {
	visitor Visitor
}

// New builds a Traverser bound to visitor.
func New(visitor Visitor) *Traverser {
	return &Traverser{visitor: visitor}
}

// Traverse walks sourceFolder's subtree, recursively processing every descendant against
// destinationParent (or its registered descendants).
func (t *Traverser) Traverse(ctx context.Context, sourceFolder, destinationParent models.Node) error {
	children, err := t.visitor.GetTree(ctx, sourceFolder)
	if err != nil {
		return errors.Wrapf(err, "error listing children of %q", sourceFolder.DisplayPath())
	}

	excluded := t.visitor.ExcludeNodes(children)

	for _, child := range children {
		if _, skip := excluded[child.ID]; skip {
			continue
		}

		if child.IsFolder() {
			destinationFolder, err := t.visitor.ProcessFolder(ctx, child, destinationParent)
			if err != nil {
				return errors.Wrapf(err, "error processing folder %q", child.DisplayPath())
			}
			if err := t.Traverse(ctx, child, destinationFolder); err != nil {
				return err
			}
			continue
		}

		if err := t.visitor.ProcessFile(ctx, child, destinationParent); err != nil {
			return errors.Wrapf(err, "error processing file %q", child.DisplayPath())
		}
	}
	return nil
}
