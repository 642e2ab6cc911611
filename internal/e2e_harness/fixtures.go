package e2e_harness

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/lychee-technology/rowmap"
)

// Contact mirrors the contacts table created by SeedContacts.
type Contact struct {
	ID        uuid.UUID  `db:"id"`
	FullName  string     `db:"full_name"`
	Email     *string    `db:"email"`
	Age       int32      `db:"age"`
	Score     *float64   `db:"score"`
	Active    bool       `db:"active"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// SeedContacts creates the contacts table and inserts five rows. Rows 3 and 5 have no email.
// Timestamps are stored as epoch milliseconds.
func SeedContacts(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS contacts (
  id UUID PRIMARY KEY,
  full_name TEXT NOT NULL,
  email TEXT,
  age INTEGER NOT NULL,
  score DOUBLE PRECISION,
  active BOOLEAN NOT NULL,
  created_at BIGINT NOT NULL,
  updated_at BIGINT
);`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	now := time.Now().UnixMilli()
	for i := 1; i <= 5; i++ {
		var (
			name  = fmt.Sprintf("John %d", i)
			email any
			score any
			age   = 20 + i
		)
		switch i {
		case 3:
			name = "Johnny Jr"
			age = 17
		case 4:
			name = "Joan"
			age = 45
		case 5:
			name = "Jane"
			age = 32
		}
		if i != 3 && i != 5 {
			email = fmt.Sprintf("contact%d@example.com", i)
			score = float64(i) * 1.5
		}
		var updated any
		if i%2 == 0 {
			updated = now - int64(10*i)
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO contacts (id, full_name, email, age, score, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, uuid.NewString(), name, email, age, score, i%2 == 1, now-int64(100*i), updated); err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
	}
	return nil
}

// ReadExport downloads an exported NDJSON object and decodes each line.
func ReadExport(ctx context.Context, cfg rowmap.ExportConfig, key string) ([]map[string]any, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithBaseEndpoint(cfg.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(out.Body)
	for scanner.Scan() {
		var line map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", len(lines)+1, err)
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
