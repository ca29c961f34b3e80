package interfaces

import (
	"github.com/goliatone/go-tagfeed/pkg/storage"
)

// StorageProvider is the backend the generator writes artifacts through.
type StorageProvider = storage.Provider

// Rows aliases storage.Rows.
type Rows = storage.Rows

// Result aliases storage.Result.
type Result = storage.Result

// Transaction aliases storage.Transaction.
type Transaction = storage.Transaction
