package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"lootledger/internal/core"
	"lootledger/internal/log"
)

// SheetsStore keeps one row per user in a Google Sheet:
// column A = username, column B = record JSON, column C = last updated (RFC3339).
type SheetsStore struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

type SheetsStoreConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

var _ Store = (*SheetsStore)(nil)

func NewSheetsStore(ctx context.Context, cfg SheetsStoreConfig, logger *log.Logger) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Records"
	}

	var credentials []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentials = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentRemote),
	}, nil
}

func (s *SheetsStore) FetchUserRecord(ctx context.Context, username string) (*core.UserRecord, error) {
	row, err := s.findRow(ctx, username)
	if err != nil {
		return nil, err
	}
	if row == 0 {
		return nil, ErrNotFound
	}

	rng := fmt.Sprintf("%s!B%d", s.sheetName, row)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return nil, ErrNotFound
	}

	doc := strings.TrimSpace(fmt.Sprint(resp.Values[0][0]))
	var rec core.UserRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode record for %s: %w", username, err)
	}
	return &rec, nil
}

func (s *SheetsStore) PushUserRecord(ctx context.Context, rec *core.UserRecord) (PushResult, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return PushResult{}, fmt.Errorf("encode record: %w", err)
	}

	row, err := s.findRow(ctx, rec.Username)
	if err != nil {
		return PushResult{}, err
	}

	values := [][]any{{rec.Username, string(doc), rec.LastUpdated.UTC().Format(time.RFC3339)}}

	if row == 0 {
		rng := fmt.Sprintf("%s!A:C", s.sheetName)
		_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return PushResult{}, fmt.Errorf("append record row: %w", err)
		}
	} else {
		rng := fmt.Sprintf("%s!A%d:C%d", s.sheetName, row, row)
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return PushResult{}, fmt.Errorf("update record row %d: %w", row, err)
		}
	}

	count, err := s.userCount(ctx)
	if err != nil {
		return PushResult{}, err
	}
	return PushResult{TotalUserCount: count}, nil
}

func (s *SheetsStore) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	row, err := s.findRow(ctx, username)
	if err != nil {
		return false, err
	}
	return row == 0, nil
}

func (s *SheetsStore) Ping(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}

// findRow returns the 1-based row holding username, or 0 when absent.
func (s *SheetsStore) findRow(ctx context.Context, username string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == username {
			return i + 1, nil
		}
	}
	return 0, nil
}

func (s *SheetsStore) userCount(ctx context.Context) (int, error) {
	rng := fmt.Sprintf("%s!A:A", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	count := 0
	for _, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) != "" {
			count++
		}
	}
	return count, nil
}
