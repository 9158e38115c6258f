package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-newsletter/internal/txctx"
)

// NewsletterIssueRepository records published newsletter issues
type NewsletterIssueRepository struct {
	db *sqlx.DB
}

func NewNewsletterIssueRepository(db *sqlx.DB) *NewsletterIssueRepository {
	return &NewsletterIssueRepository{db: db}
}

// Save stores an issue. Run it on the idempotency transaction so the
// issue row and the saved response commit together.
func (r *NewsletterIssueRepository) Save(ctx context.Context, issueID, userID uuid.UUID, title, content string) error {
	const query = `
		INSERT INTO newsletter_issues (newsletter_issue_id, published_by, title, content, published_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	res, err := txctx.Executor(ctx, r.db).ExecContext(ctx, query, issueID, userID, title, content)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logQuery(query, []any{issueID, userID, title}, rowsAffected, err)

	return err
}
