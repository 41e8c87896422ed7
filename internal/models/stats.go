package models

import "time"

// StatsOverview is the admin analytics snapshot, recomputed per fetch by
// aggregating the materialized record sets in process.
type StatsOverview struct {
	TotalUsers         int       `json:"total_users"`
	TotalComplaints    int       `json:"total_complaints"`
	TotalReports       int       `json:"total_reports"`
	TotalCredits       int       `json:"total_credits"`
	PendingComplaints  int       `json:"pending_complaints"`
	AssignedComplaints int       `json:"assigned_complaints"`
	ResolvedComplaints int       `json:"resolved_complaints"`
	PendingReports     int       `json:"pending_reports"`
	ActiveUsers        int       `json:"active_users"`
	ResolutionRate     int       `json:"resolution_rate"`
	EngagementRate     int       `json:"engagement_rate"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// GreenChampion is the role="user" profile with the maximal credit balance.
type GreenChampion struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
}
