// Package batch applies lists of repository operations with one status
// record per operation.
package batch

import (
	"context"
	"net/http"

	"github.com/stacklok/template-registry-server/internal/repository"
)

const (
	// OpEnable sets the enabled flag of a repository to Value == "true"
	OpEnable = "enable"

	// MsgUnknownRepositoryURL is reported for operations on URLs not in the list
	MsgUnknownRepositoryURL = "Unknown repository URL"

	// MsgUnknownOperation is reported for unsupported op values
	MsgUnknownOperation = "Unknown operation"
)

// Operation is one requested change
type Operation struct {
	Op    string `json:"op"`
	URL   string `json:"url"`
	Value string `json:"value"`
}

// Result reports the outcome of one Operation using HTTP status codes
type Result struct {
	Status             int       `json:"status"`
	RequestedOperation Operation `json:"requestedOperation"`
	Error              string    `json:"error,omitempty"`
}

// Runner applies batches against a repository store
type Runner struct {
	store *repository.Store
}

// NewRunner creates a Runner for store
func NewRunner(store *repository.Store) *Runner {
	return &Runner{store: store}
}

// PerformOperation applies op to tx. It never persists.
func PerformOperation(tx *repository.Tx, op Operation) Result {
	switch op.Op {
	case OpEnable:
		repo := tx.Find(op.URL)
		if repo == nil {
			return Result{Status: http.StatusNotFound, RequestedOperation: op, Error: MsgUnknownRepositoryURL}
		}
		repo.SetEnabled(op.Value == "true")
		return Result{Status: http.StatusOK, RequestedOperation: op}
	default:
		return Result{Status: http.StatusBadRequest, RequestedOperation: op, Error: MsgUnknownOperation}
	}
}

// BatchUpdate applies ops in order and persists the list exactly once,
// however many operations succeeded. It fails only if persisting fails.
func (r *Runner) BatchUpdate(ctx context.Context, ops []Operation) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	err := r.store.Update(ctx, func(tx *repository.Tx) error {
		for _, op := range ops {
			results = append(results, PerformOperation(tx, op))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
