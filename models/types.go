package models

import (
	"time"

	"github.com/danielhkuo/quickly-vote/election"
)

// Voter roles
const (
	RoleVoter   = "voter"
	RoleAdmin   = "admin"
	RoleAuditor = "auditor"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleVoter, RoleAdmin, RoleAuditor:
		return true
	}
	return false
}

// Request types

type CastVoteRequest struct {
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
}

// Dates are RFC3339, or naive local timestamps interpreted with X-UTC-Offset
type ElectionRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type CreateCandidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
}

type RegisterVoterRequest struct {
	ExternalID string `json:"externalId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

// Response types

type CastVoteResponse struct {
	Message       string    `json:"message"`
	ElectionID    string    `json:"electionId"`
	ElectionName  string    `json:"electionName"`
	CandidateID   string    `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	VotedAt       time.Time `json:"votedAt"`
}

type CreateElectionResponse struct {
	ElectionID string         `json:"electionId"`
	Status     election.State `json:"status"`
}

type CreateCandidateResponse struct {
	CandidateID string `json:"candidateId"`
}

type RegisterVoterResponse struct {
	VoterID string `json:"voterId"`
	Token   string `json:"token"`
}

type ElectionListResponse struct {
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Total    int               `json:"total"`
	Items    []ElectionSummary `json:"items"`
}

type AuditLogListResponse struct {
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
	Items    []AuditLogEntry `json:"items"`
}

// Domain types

// Election has no status field; see election.Resolve.
type Election struct {
	ID        string     `json:"electionId"`
	Name      string     `json:"name"`
	StartDate *time.Time `json:"startDateUtc"`
	EndDate   *time.Time `json:"endDateUtc"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ElectionSummary struct {
	ElectionID     string         `json:"electionId"`
	Name           string         `json:"name"`
	StartDateUTC   *time.Time     `json:"startDateUtc"`
	EndDateUTC     *time.Time     `json:"endDateUtc"`
	Status         election.State `json:"status"`
	CandidateCount int            `json:"candidateCount"`
	VoteCount      int            `json:"voteCount"`
}

type Candidate struct {
	ID         string `json:"candidateId"`
	ElectionID string `json:"electionId"`
	Name       string `json:"name"`
	Party      string `json:"party"`
}

type Voter struct {
	ID         string    `json:"voterId"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Vote struct {
	ID          string    `json:"voteId"`
	ElectionID  string    `json:"electionId"`
	VoterID     string    `json:"-"`
	CandidateID string    `json:"candidateId"`
	VotedAt     time.Time `json:"votedAt"`
}

type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    *string   `json:"userId"` // nil for system actions or removed users
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// Results

type CandidateTally struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Votes       int    `json:"votes"`
}

type ResultSet struct {
	ElectionID      string           `json:"electionId"`
	ElectionName    string           `json:"electionName"`
	StartDateUTC    time.Time        `json:"startDateUtc"`
	EndDateUTC      time.Time        `json:"endDateUtc"`
	IsClosed        bool             `json:"isClosed"`
	TotalVotes      int              `json:"totalVotes"`
	TotalCandidates int              `json:"totalCandidates"`
	Items           []CandidateTally `json:"items"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
