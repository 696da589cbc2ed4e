package reminder

import (
	"fmt"

	"github.com/spf13/afero"
)

// Storage backends accepted by OpenKV.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// ClosableKV is a KV holding resources that must be released.
type ClosableKV interface {
	KV
	Deleter
	Close() error
}

// OpenKV opens the storage backend named by driver at path.
func OpenKV(driver, path string) (ClosableKV, error) {
	var (
		kv  ClosableKV
		err error
	)
	switch driver {
	case DriverSQLite:
		kv, err = NewSQLiteKV(path)
	case DriverFile:
		kv, err = NewFileKV(afero.NewOsFs(), path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}
