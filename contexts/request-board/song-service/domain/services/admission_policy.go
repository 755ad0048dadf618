package services

import (
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
)

const day = 24 * time.Hour

type Rejection string

const (
	RejectionNone              Rejection = ""
	RejectionUsedRecently      Rejection = "used_recently"
	RejectionSubmittedRecently Rejection = "submitted_recently"
	RejectionSubmitterLimit    Rejection = "submitter_limit"
)

func (r Rejection) Message() string {
	switch r {
	case RejectionUsedRecently:
		return "this song was already played recently and cannot be submitted again yet"
	case RejectionSubmittedRecently:
		return "this song was already submitted this week"
	case RejectionSubmitterLimit:
		return "you have reached the submission limit for now"
	default:
		return ""
	}
}

// AdmissionWindows are the trailing lookback intervals used by the admission
// rules. Zero fields fall back to the defaults.
type AdmissionWindows struct {
	Submitter    time.Duration
	UsedLookback time.Duration
	Resubmit     time.Duration
}

func DefaultAdmissionWindows() AdmissionWindows {
	return AdmissionWindows{
		Submitter:    4 * day,
		UsedLookback: 10 * day,
		Resubmit:     3 * day,
	}
}

// AdmissionPolicy evaluates submission rules against recent song history.
// SubmitterLimit <= 0 keeps the submitter count informational only.
type AdmissionPolicy struct {
	Windows        AdmissionWindows
	SubmitterLimit int
}

func (p AdmissionPolicy) windows() AdmissionWindows {
	defaults := DefaultAdmissionWindows()
	w := p.Windows
	if w.Submitter <= 0 {
		w.Submitter = defaults.Submitter
	}
	if w.UsedLookback <= 0 {
		w.UsedLookback = defaults.UsedLookback
	}
	if w.Resubmit <= 0 {
		w.Resubmit = defaults.Resubmit
	}
	return w
}

// SubmitterSince is the lower createdAt bound for the submitter count.
func (p AdmissionPolicy) SubmitterSince(now time.Time) time.Time {
	return now.Add(-p.windows().Submitter)
}

// NameSince is the widest lower bound any duplicate-name rule looks at.
func (p AdmissionPolicy) NameSince(now time.Time) time.Time {
	w := p.windows()
	widest := w.UsedLookback
	if w.Resubmit > widest {
		widest = w.Resubmit
	}
	return now.Add(-widest)
}

func (p AdmissionPolicy) CheckSubmitter(recentCount int) Rejection {
	if p.SubmitterLimit > 0 && recentCount >= p.SubmitterLimit {
		return RejectionSubmitterLimit
	}
	return RejectionNone
}

// CheckName applies the duplicate-name rules. A used match inside the used
// lookback wins over a plain resubmission inside the resubmit window, no
// matter the order of sameName.
func (p AdmissionPolicy) CheckName(now time.Time, sameName []entities.Song) Rejection {
	w := p.windows()
	usedSince := now.Add(-w.UsedLookback)
	resubmitSince := now.Add(-w.Resubmit)

	submittedRecently := false
	for _, song := range sameName {
		if song.Status == entities.StatusUsed && song.CreatedAt.After(usedSince) {
			return RejectionUsedRecently
		}
		if song.CreatedAt.After(resubmitSince) {
			submittedRecently = true
		}
	}
	if submittedRecently {
		return RejectionSubmittedRecently
	}
	return RejectionNone
}
