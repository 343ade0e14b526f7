package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"jobdesk/internal/core/apperror"
	"jobdesk/internal/core/entity"
	"jobdesk/internal/core/id"
)

var documentCols = []string{
	"id", "doc_type", "doc_no", "status", "issue_date", "job_id",
	"amount", "created_by", "created_at", "updated_at", "version",
}

// DocumentRepo persists numbered documents.
type DocumentRepo struct {
	txm *TxManager
}

// NewDocumentRepo creates a document repository.
func NewDocumentRepo(txm *TxManager) *DocumentRepo {
	return &DocumentRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new document.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.DocumentRecord) error {
	sql, args, err := builder().
		Insert("documents").
		Columns(documentCols...).
		Values(doc.ID, string(doc.DocType), doc.DocNo, string(doc.Status), doc.IssueDate,
			doc.JobID, doc.Amount, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt, doc.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID returns a document or apperror NOT_FOUND.
func (r *DocumentRepo) GetByID(ctx context.Context, docID id.ID) (*entity.DocumentRecord, error) {
	sql, args, err := builder().
		Select(documentCols...).
		From("documents").
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var doc entity.DocumentRecord
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &doc, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("document", docID)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// ExistsNumber reports whether any document of docType carries docNo.
// Documents are never deleted, so the scan covers all time.
func (r *DocumentRepo) ExistsNumber(ctx context.Context, docType entity.DocumentType, docNo string) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, `
        SELECT EXISTS(SELECT 1 FROM documents WHERE doc_type = $1 AND doc_no = $2)
	`, string(docType), docNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("scan document numbers: %w", err)
	}
	return exists, nil
}

// MaxIssuedSeq returns the highest sequence issued under
// (docType, prefix, year), parsing it out of the "{prefix}{year}-{seq}"
// number format. Manual numbers with a non-numeric tail never match the
// pattern and are skipped. 0 when none exist.
func (r *DocumentRepo) MaxIssuedSeq(ctx context.Context, docType entity.DocumentType, prefix string, year int) (int64, error) {
	var maxSeq int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, `
        SELECT COALESCE(MAX(split_part(doc_no, '-', 2)::bigint), 0)
        FROM documents
        WHERE doc_type = $1 AND doc_no ~ $2
	`, string(docType), issuedSeqPattern(prefix, year)).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("scan issued sequences: %w", err)
	}
	return maxSeq, nil
}

// issuedSeqPattern matches numbers in the generated "{prefix}{year}-{seq}"
// shape, with a strictly numeric tail.
func issuedSeqPattern(prefix string, year int) string {
	return fmt.Sprintf(`^%s%d-[0-9]+$`, regexp.QuoteMeta(prefix), year)
}

// RelinkJob points a document's job link at the archived job identifier so
// history views resolve after the source job is gone.
func (r *DocumentRepo) RelinkJob(ctx context.Context, docID, archivedJobID id.ID) error {
	sql, args, err := builder().
		Update("documents").
		Set("job_id", archivedJobID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("relink document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("document", docID)
	}
	return nil
}
