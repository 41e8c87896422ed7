package models

import "time"

// ReportStatus enumerates the misconduct report review states.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

var reportRank = map[ReportStatus]int{
	ReportPending:  0,
	ReportReviewed: 1,
	ReportResolved: 2,
}

// Valid reports whether the status is a known review state.
func (s ReportStatus) Valid() bool {
	_, ok := reportRank[s]
	return ok
}

// CanAdvanceTo reports whether s -> next moves strictly forward. Reviewed may
// be skipped (pending -> resolved is a legal advance).
func (s ReportStatus) CanAdvanceTo(next ReportStatus) bool {
	from, ok := reportRank[s]
	if !ok {
		return false
	}
	to, ok := reportRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Report is a citizen-filed worker misconduct report tied to a complaint.
type Report struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"user_id"`
	ComplaintID string       `db:"complaint_id" json:"complaint_id"`
	Description string       `db:"description" json:"description"`
	Status      ReportStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// ReportFilter captures list criteria; a nil UserID means all reports.
type ReportFilter struct {
	UserID *string
	Status *ReportStatus
}

// CreateReportRequest files a misconduct report against an assigned complaint.
type CreateReportRequest struct {
	ComplaintID string `json:"complaint_id" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateReportStatusRequest patches the review status.
type UpdateReportStatusRequest struct {
	Status ReportStatus `json:"status" validate:"required,oneof=pending reviewed resolved"`
}
