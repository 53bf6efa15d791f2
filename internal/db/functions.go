package db

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

var registerFunctions = sync.OnceValue(func() error {
	// SQLite's LOWER only folds ASCII; names here are frequently Turkish.
	if err := sqlite.RegisterDeterministicScalarFunction("fold", 1, fold); err != nil {
		return fmt.Errorf("register fold function: %w", err)
	}
	return nil
})

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
