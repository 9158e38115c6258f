package models

// IssuePublished is the event written to Kafka once a newsletter issue
// has been dispatched and its idempotency record committed.
type IssuePublished struct {
	IssueID        string `json:"issue_id"`        // IssueID identifies the stored newsletter issue.
	UserID         string `json:"user_id"`         // UserID is the admin who published the issue.
	IdempotencyKey string `json:"idempotency_key"` // IdempotencyKey is the key the issue was published under.
	Title          string `json:"title"`           // Title is the issue subject line.
	Recipients     int    `json:"recipients"`      // Recipients is the number of emails sent.
	Timestamp      int64  `json:"timestamp"`       // Timestamp is the Unix time of publication.
}
