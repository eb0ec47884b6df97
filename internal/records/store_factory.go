package records

import (
	"strings"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/postgres"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

// OpenStorage picks a backend from the shape of path: postgres:// and
// postgresql:// connection strings go to Postgres, anything else is
// treated as a SQLite file.
func OpenStorage(path string) (storage.Storage, error) {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		pg, err := postgres.New(path)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	lite, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
