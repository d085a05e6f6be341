package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/hashicorp/go-hclog"

	"github.com/devguard-io/devguard/internal/findings"
	"github.com/devguard-io/devguard/pkg/shared/config"
)

const (
	historyTTL          = 90 * 24 * time.Hour
	defaultHistoryLimit = 10
)

// HistoryStore keeps per-user scan history in a DynamoDB table keyed by
// user_id and scan_id. Items expire after 90 days.
type HistoryStore struct {
	api    dynamodbiface.DynamoDBAPI
	table  string
	logger hclog.Logger
	now    func() time.Time
}

// ScanEntry is one scan run to persist.
type ScanEntry struct {
	UserID   string
	ScanID   string
	Findings []findings.Finding
	Metadata map[string]string
	S3Key    string
}

// ScanRecord is one stored scan read back from the history table.
type ScanRecord struct {
	ScanID        string
	Timestamp     string
	TotalFindings int
	Findings      []findings.Finding
	Metadata      map[string]string
	S3Key         string
}

// NewHistoryStore builds the history store from the storage configuration.
// It returns nil when no table is configured, the nil store is safe to use
// and skips every operation.
func NewHistoryStore(cfg *config.Config, logger hclog.Logger) *HistoryStore {
	if cfg.Storage.DynamoDBTable == "" {
		logger.Debug("no DynamoDB table configured, scan history disabled")
		return nil
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(config.SetThen(cfg.Storage.Region, defaultRegion)),
	}))

	return &HistoryStore{
		api:    dynamodb.New(sess),
		table:  cfg.Storage.DynamoDBTable,
		logger: logger,
		now:    time.Now,
	}
}

// Enabled reports whether history writes will actually happen.
func (h *HistoryStore) Enabled() bool {
	return h != nil && h.table != ""
}

// SaveScan writes one history item. Findings and metadata are stored as JSON
// string attributes so the table schema stays flat.
func (h *HistoryStore) SaveScan(ctx context.Context, entry ScanEntry) error {
	if !h.Enabled() {
		return nil
	}

	results := entry.Findings
	if results == nil {
		results = []findings.Finding{}
	}
	findingsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to serialize findings: %w", err)
	}

	now := h.now()
	item := map[string]*dynamodb.AttributeValue{
		"user_id":        {S: aws.String(entry.UserID)},
		"scan_id":        {S: aws.String(entry.ScanID)},
		"timestamp":      {S: aws.String(now.UTC().Format(time.RFC3339))},
		"total_findings": {N: aws.String(strconv.Itoa(len(results)))},
		"findings":       {S: aws.String(string(findingsJSON))},
		"ttl":            {N: aws.String(strconv.FormatInt(now.Add(historyTTL).Unix(), 10))},
	}

	if len(entry.Metadata) > 0 {
		metadataJSON, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata: %w", err)
		}
		item["metadata"] = &dynamodb.AttributeValue{S: aws.String(string(metadataJSON))}
	}
	if entry.S3Key != "" {
		item["s3_key"] = &dynamodb.AttributeValue{S: aws.String(entry.S3Key)}
	}

	_, err = h.api.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(h.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save scan history: %w", err)
	}

	h.logger.Debug("saved scan history", "table", h.table, "userID", entry.UserID, "scanID", entry.ScanID)
	return nil
}

// UserScans returns the most recent scans for a user, newest first. A zero
// limit falls back to 10.
func (h *HistoryStore) UserScans(ctx context.Context, userID string, limit int64) ([]ScanRecord, error) {
	if !h.Enabled() {
		return []ScanRecord{}, nil
	}

	out, err := h.api.QueryWithContext(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(h.table),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":uid": {S: aws.String(userID)},
		},
		Limit:            aws.Int64(config.SetThen(limit, int64(defaultHistoryLimit))),
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}

	records := make([]ScanRecord, 0, len(out.Items))
	for _, item := range out.Items {
		record := ScanRecord{
			ScanID:    attrString(item, "scan_id"),
			Timestamp: attrString(item, "timestamp"),
			S3Key:     attrString(item, "s3_key"),
			Findings:  []findings.Finding{},
		}
		if n, err := strconv.Atoi(attrNumber(item, "total_findings")); err == nil {
			record.TotalFindings = n
		}
		if raw := attrString(item, "findings"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &record.Findings); err != nil {
				h.logger.Warn("could not decode stored findings", "scanID", record.ScanID, "error", err)
				record.Findings = []findings.Finding{}
			}
		}
		if raw := attrString(item, "metadata"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &record.Metadata); err != nil {
				h.logger.Warn("could not decode stored metadata", "scanID", record.ScanID, "error", err)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func attrString(item map[string]*dynamodb.AttributeValue, key string) string {
	if attr, ok := item[key]; ok && attr.S != nil {
		return *attr.S
	}
	return ""
}

func attrNumber(item map[string]*dynamodb.AttributeValue, key string) string {
	if attr, ok := item[key]; ok && attr.N != nil {
		return *attr.N
	}
	return ""
}
