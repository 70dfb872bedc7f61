// Package archive moves long-uploaded check-ins off the device.
//
// Uploaded scans stay in the local queue as an audit trail. Once they are
// older than the retention period they are written to an S3 bucket as one
// JSON Lines object per run and only then deleted locally. A failed upload
// leaves the local rows in place.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/scans"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/timex"
	"github.com/google/uuid"
)

// ObjectPutter is the subset of *s3.Client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Record is the archived form of one check-in.
type Record struct {
	ID              int64  `json:"id"`
	EntryID         int64  `json:"entry_id"`
	SessionType     string `json:"session_type"`
	SessionName     string `json:"session_name"`
	GateNumber      string `json:"gate_number"`
	GateLocation    string `json:"gate_location"`
	CheckInTime     string `json:"check_in_time"`
	ScannerDeviceID string `json:"scanner_device_id"`
	ScannerOperator string `json:"scanner_operator"`
	CreatedAt       string `json:"created_at"`
}

type Archiver struct {
	store     ObjectPutter
	bucket    string
	scanRepo  scans.Repository
	retention time.Duration
	clock     timex.Clock
	log       logging.Logger
}

func NewArchiver(store ObjectPutter, bucket string, scanRepo scans.Repository, retention time.Duration,
	clock timex.Clock, log logging.Logger) *Archiver {
	return &Archiver{
		store:     store,
		bucket:    bucket,
		scanRepo:  scanRepo,
		retention: retention,
		clock:     clock,
		log:       log.With("component", "archive"),
	}
}

// Run archives and prunes uploaded scans older than the retention period.
// It returns the number of pruned rows.
func (a *Archiver) Run(ctx context.Context, deviceID string) (int64, error) {
	now := a.clock.Now().UTC()
	cutoff := now.Add(-a.retention)

	old, err := a.scanRepo.ListUploadedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(old) == 0 {
		return 0, nil
	}

	body, err := encode(old)
	if err != nil {
		return 0, err
	}

	key := ObjectKey(deviceID, now)
	_, err = a.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}

	n, err := a.scanRepo.PruneUploadedBefore(ctx, cutoff, old[len(old)-1].ID)
	if err != nil {
		return 0, err
	}

	a.log.Info(ctx, "scans archived", "key", key, "archived", len(old), "pruned", n)
	return n, nil
}

// ObjectKey names the object of one archive run.
func ObjectKey(deviceID string, at time.Time) string {
	return fmt.Sprintf("checkins/%s/%s/%s.jsonl", deviceID, at.Format("2006/01/02"), uuid.NewString())
}

func encode(list []models.PendingScan) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, s := range list {
		err := enc.Encode(Record{
			ID:              s.ID,
			EntryID:         s.EntryID,
			SessionType:     s.SessionType,
			SessionName:     s.SessionName,
			GateNumber:      s.GateNumber,
			GateLocation:    s.GateLocation,
			CheckInTime:     s.CheckInTime.UTC().Format(common.CheckInTimeLayout),
			ScannerDeviceID: s.ScannerDeviceID,
			ScannerOperator: s.ScannerOperator,
			CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("encode scan %d: %w", s.ID, err)
		}
	}
	return buf.Bytes(), nil
}
