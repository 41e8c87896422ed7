package models

import "time"

// ComplaintStatus enumerates the complaint workflow states.
type ComplaintStatus string

const (
	ComplaintPending   ComplaintStatus = "pending"
	ComplaintAssigned  ComplaintStatus = "assigned"
	ComplaintCompleted ComplaintStatus = "completed"
)

// complaintRank orders statuses for the monotonic-advance guard.
var complaintRank = map[ComplaintStatus]int{
	ComplaintPending:   0,
	ComplaintAssigned:  1,
	ComplaintCompleted: 2,
}

// Valid reports whether the status is a known workflow state.
func (s ComplaintStatus) Valid() bool {
	_, ok := complaintRank[s]
	return ok
}

// CanAdvanceTo reports whether the transition s -> next moves strictly forward.
func (s ComplaintStatus) CanAdvanceTo(next ComplaintStatus) bool {
	from, ok := complaintRank[s]
	if !ok {
		return false
	}
	to, ok := complaintRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Complaint represents a citizen-filed waste complaint.
type Complaint struct {
	ID                  string          `db:"id" json:"id"`
	UserID              string          `db:"user_id" json:"user_id"`
	Name                string          `db:"name" json:"name"`
	Location            string          `db:"location" json:"location"`
	Description         string          `db:"description" json:"description"`
	ImageURL            *string         `db:"image_url" json:"image_url,omitempty"`
	Status              ComplaintStatus `db:"status" json:"status"`
	AssignedWorkerID    *string         `db:"assigned_worker_id" json:"assigned_worker_id,omitempty"`
	AssignedWorkerName  *string         `db:"assigned_worker_name" json:"assigned_worker_name,omitempty"`
	AssignedWorkerPhone *string         `db:"assigned_worker_phone" json:"assigned_worker_phone,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// ComplaintFilter captures list criteria; a nil UserID means all complaints.
type ComplaintFilter struct {
	UserID *string
	Status *ComplaintStatus
}

// CreateComplaintRequest is the citizen-facing complaint payload.
type CreateComplaintRequest struct {
	Name        string  `json:"name" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	Description string  `json:"description" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,max=512"`
}

// AssignComplaintRequest selects the worker for a complaint.
type AssignComplaintRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
}

// UpdateComplaintStatusRequest patches the workflow status.
type UpdateComplaintStatusRequest struct {
	Status ComplaintStatus `json:"status" validate:"required,oneof=pending assigned completed"`
}
