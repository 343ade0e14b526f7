// Package main provides a CLI tool that applies the database schema and
// seeds numbering configuration and demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
	"jobdesk/internal/domain/profile"
	"jobdesk/internal/infrastructure/storage/postgres"
	"jobdesk/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id          UUID PRIMARY KEY,
		doc_type    TEXT NOT NULL,
		doc_no      TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'draft',
		issue_date  TIMESTAMPTZ NOT NULL,
		job_id      UUID,
		amount      NUMERIC(15,2) NOT NULL DEFAULT 0,
		created_by  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version     INT NOT NULL DEFAULT 1,
		UNIQUE (doc_type, doc_no)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_job ON documents (job_id)`,

	`CREATE TABLE IF NOT EXISTS doc_counters (
		year       INT NOT NULL,
		doc_type   TEXT NOT NULL,
		prefix     TEXT NOT NULL,
		last_seq   BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (year, doc_type, prefix)
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id             UUID PRIMARY KEY,
		job_no         TEXT NOT NULL,
		department     TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		customer_name  TEXT NOT NULL DEFAULT '',
		customer_phone TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		sales_doc_id   UUID,
		created_by     TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version        INT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status, updated_at)`,

	`CREATE TABLE IF NOT EXISTS job_activities (
		id         UUID PRIMARY KEY,
		job_id     UUID NOT NULL,
		note       TEXT NOT NULL DEFAULT '',
		author     TEXT NOT NULL DEFAULT '',
		photo_refs TEXT[],
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_activities_job ON job_activities (job_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS archived_jobs (
		id               UUID PRIMARY KEY,
		job_no           TEXT NOT NULL,
		department       TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		customer_name    TEXT NOT NULL DEFAULT '',
		customer_phone   TEXT NOT NULL DEFAULT '',
		description      TEXT NOT NULL DEFAULT '',
		created_by       TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		is_archived      BOOLEAN NOT NULL DEFAULT TRUE,
		archive_year     INT NOT NULL,
		archived_at      TIMESTAMPTZ NOT NULL,
		archived_by      TEXT NOT NULL DEFAULT '',
		original_job_id  UUID NOT NULL UNIQUE,
		closing_doc_id   UUID,
		closing_doc_type TEXT NOT NULL DEFAULT '',
		closing_doc_no   TEXT NOT NULL DEFAULT '',
		payment_status   TEXT NOT NULL DEFAULT '',
		snapshot         BYTEA,
		snapshot_algo    TEXT NOT NULL DEFAULT 'none'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_archived_jobs_year ON archived_jobs (archive_year, archived_at)`,

	`CREATE TABLE IF NOT EXISTS archived_job_activities (
		id              UUID PRIMARY KEY,
		original_job_id UUID NOT NULL,
		archive_year    INT NOT NULL,
		note            TEXT NOT NULL DEFAULT '',
		author          TEXT NOT NULL DEFAULT '',
		photo_refs      TEXT[],
		created_at      TIMESTAMPTZ NOT NULL,
		archived_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_archived_activities_job ON archived_job_activities (archive_year, original_job_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS document_settings (
		doc_type   TEXT PRIMARY KEY,
		prefix     TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		uid          TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL DEFAULT 'technician',
		department   TEXT NOT NULL DEFAULT ''
	)`,
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := applySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	txm := postgres.NewTxManager(pool)

	if err := seedSettings(ctx, txm, log); err != nil {
		log.Fatalw("failed to seed document settings", "error", err)
	}

	if err := seedProfiles(ctx, txm, log); err != nil {
		log.Fatalw("failed to seed user profiles", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoJobs(ctx, txm, log); err != nil {
			log.Fatalw("failed to seed demo jobs", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func applySchema(ctx context.Context, pool *postgres.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}

func seedSettings(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	repo := postgres.NewSettingsRepo(txm)

	prefixes := map[entity.DocumentType]string{
		entity.DocQuotation:       "QT",
		entity.DocDeliveryNote:    "DN",
		entity.DocTaxInvoice:      "T",
		entity.DocReceipt:         "R",
		entity.DocBillingNote:     "BN",
		entity.DocCreditNote:      "CN",
		entity.DocWithholdingCert: "WT",
	}

	for docType, prefix := range prefixes {
		if err := repo.SetPrefix(ctx, docType, prefix); err != nil {
			return err
		}
		log.Infow("prefix configured", "doc_type", docType, "prefix", prefix)
	}
	return nil
}

func seedProfiles(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	repo := postgres.NewProfileRepo(txm)

	profiles := []*profile.Profile{
		{UID: "demo-admin", DisplayName: "System Admin", Role: profile.RoleAdmin},
		{UID: "demo-manager", DisplayName: "Shop Manager", Role: profile.RoleManager},
		{UID: "demo-office", DisplayName: "Office Staff", Role: profile.RoleOffice, Department: "office"},
		{UID: "demo-tech", DisplayName: "Technician", Role: profile.RoleTechnician, Department: "workshop"},
	}

	for _, p := range profiles {
		if err := repo.Upsert(ctx, p); err != nil {
			return err
		}
		log.Infow("profile seeded", "uid", p.UID, "role", p.Role)
	}
	return nil
}

func seedDemoJobs(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	log.Info("seeding demo jobs...")

	repo := postgres.NewJobRepo(txm)
	now := time.Now().UTC()

	jobs := []*entity.Job{
		{
			ID:           id.New(),
			JobNo:        "J-1001",
			Department:   "workshop",
			Status:       entity.JobInProgress,
			CustomerName: "Somchai P.",
			Description:  "Replace compressor",
			CreatedBy:    "demo-office",
			CreatedAt:    now.Add(-72 * time.Hour),
			UpdatedAt:    now.Add(-24 * time.Hour),
			Version:      1,
		},
		{
			ID:           id.New(),
			JobNo:        "J-1002",
			Department:   "workshop",
			Status:       entity.JobClosed,
			CustomerName: "Malee K.",
			Description:  "Annual service, picked up last week",
			CreatedBy:    "demo-office",
			CreatedAt:    now.Add(-240 * time.Hour),
			UpdatedAt:    now.Add(-168 * time.Hour),
			Version:      1,
		},
	}

	for _, job := range jobs {
		if err := repo.Create(ctx, job); err != nil {
			log.Warnw("failed to seed job", "job_no", job.JobNo, "error", err)
			continue
		}
		activity := entity.NewJobActivity(job.ID, "demo-office", "job received")
		if err := repo.AppendActivity(ctx, activity); err != nil {
			log.Warnw("failed to seed activity", "job_no", job.JobNo, "error", err)
		}
		log.Infow("job seeded", "job_no", job.JobNo, "status", job.Status)
	}
	return nil
}
