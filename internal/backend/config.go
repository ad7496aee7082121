package backend

import (
	"fmt"

	"fraudbusters/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		TransactionsPath:    appConfig.TransactionsPath,
		CustomerHistoryPath: appConfig.CustomerHistoryPath,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:     appConfig.GoogleSpreadsheetID,
		GoogleTransactionsSheet: appConfig.GoogleTransactionsSheet,
		GoogleHistorySheet:      appConfig.GoogleHistorySheet,
		GoogleCredentialsFile:   appConfig.GoogleCredentialsFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case CSVBackend:
		if c.TransactionsPath == "" || c.CustomerHistoryPath == "" {
			return fmt.Errorf("both CSV paths are required for csv backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{CSVBackend, SQLiteBackend, SheetsBackend}
}
