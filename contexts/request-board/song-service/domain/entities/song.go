package entities

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusUsed     Status = "used"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts only the closed status enumeration.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusUsed:
		return StatusUsed, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

type Song struct {
	SongID         string
	Name           string
	Artist         string
	Message        string
	SubmitterName  string
	SubmitterClass string
	SubmitterGrade string
	Status         Status
	VoteSum        int
	VoteUsers      VoterSet
	CreatedAt      time.Time
}

// SubmitterKey is the composite identity used for submitter rate limiting.
type SubmitterKey struct {
	Name  string
	Class string
	Grade string
}

func (s Song) SubmitterKey() SubmitterKey {
	return SubmitterKey{
		Name:  s.SubmitterName,
		Class: s.SubmitterClass,
		Grade: s.SubmitterGrade,
	}
}

// VoteOutcome is the result of an atomic add-voter-if-absent store operation.
type VoteOutcome struct {
	Recorded bool
	VoteSum  int
}
