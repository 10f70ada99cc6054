package app

import "netinv/internal/inventory"

// Operation tracks the audited command of a CLI session. Operations are
// created in memory with ID=0. Only commands that change the inventory
// persist them, which gives them an id from the operations table. That id is
// the version of the backup uploaded on Close.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
}

// NewOperation creates a new in-memory operation.
func NewOperation(operation, parameters string) *Operation {
	return &Operation{
		Operation:  operation,
		Parameters: parameters,
		Status:     inventory.StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Finish records the outcome of the command. A later success does not clear
// an earlier failure.
func (op *Operation) Finish(err error) {
	if err != nil {
		op.Status = inventory.StatusFor(err)
	}
}
