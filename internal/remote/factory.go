package remote

import (
	"context"
	"fmt"

	"lootledger/internal/config"
	"lootledger/internal/log"
)

// NewStore builds the remote store selected by the configuration.
// Returns (nil, nil) for the "none" backend, which keeps the tracker
// local-only.
func NewStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (Store, error) {
	switch cfg.RemoteBackend {
	case config.RemoteNone:
		return nil, nil
	case config.RemoteHTTP:
		return NewHTTPStore(HTTPStoreConfig{
			BaseURL:    cfg.RemoteBaseURL,
			Timeout:    cfg.RemoteTimeout,
			MaxRetries: cfg.RemoteMaxRetries,
			RetryDelay: cfg.RemoteRetryDelay,
		}, logger)
	case config.RemoteSheets:
		return NewSheetsStore(ctx, SheetsStoreConfig{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported remote backend: %s", cfg.RemoteBackend)
	}
}
