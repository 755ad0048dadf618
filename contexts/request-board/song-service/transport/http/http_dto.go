package httptransport

// Outcome is the uniform envelope returned by every song operation. Code is
// empty on success, "rejected" when an admission or voting rule declined the
// request, or an error kind otherwise.
type Outcome struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

const CodeRejected = "rejected"

type SubmitSongRequest struct {
	SongID         string `json:"id"`
	Name           string `json:"name"`
	Artist         string `json:"artist,omitempty"`
	Message        string `json:"message,omitempty"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterClass string `json:"submitter_class"`
	SubmitterGrade string `json:"submitter_grade"`
}

type SubmitSongResponse struct {
	SongID string `json:"id"`
}

type SubmitRejectionResponse struct {
	Reason string `json:"reason"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type BatchSetStatusRequest struct {
	SongIDs []string `json:"ids"`
	Status  string   `json:"status"`
}

type BatchSetStatusResponse struct {
	Requested int `json:"requested"`
	Updated   int `json:"updated"`
}

type SongDTO struct {
	SongID         string `json:"id"`
	Name           string `json:"name"`
	Artist         string `json:"artist,omitempty"`
	Message        string `json:"message,omitempty"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterClass string `json:"submitter_class"`
	SubmitterGrade string `json:"submitter_grade"`
	Status         string `json:"status"`
	VoteSum        int    `json:"votesum"`
	CreatedAt      string `json:"created_at"`
}

type ListSongsResponse struct {
	Items []SongDTO `json:"items"`
}

type VoteResponse struct {
	SongID  string `json:"id"`
	VoteSum int    `json:"votesum"`
}
