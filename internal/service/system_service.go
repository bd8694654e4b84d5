package service

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/finledger/transactions-service/internal/database"
	"github.com/finledger/transactions-service/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// VersionInfo holds application and schema version details.
type VersionInfo struct {
	AppVersion    string
	SchemaVersion int64
}

// CheckVersion returns the application version and the applied schema version.
func (s *SystemService) CheckVersion() (VersionInfo, error) {
	schemaVersion, err := goose.GetDBVersion(s.db)
	if err != nil {
		return VersionInfo{}, err
	}

	return VersionInfo{
		AppVersion:    version.Version,
		SchemaVersion: schemaVersion,
	}, nil
}
