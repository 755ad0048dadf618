package errors

import "errors"

var (
	ErrSongNotFound     = errors.New("song not found")
	ErrSongConflict     = errors.New("song id already exists")
	ErrInvalidSongInput = errors.New("invalid song input")
	ErrInvalidStatus    = errors.New("invalid song status")
	ErrInvalidVoteInput = errors.New("invalid vote input")
	ErrStoreUnavailable = errors.New("song store unavailable")
)

// Kind groups sentinel errors into the categories callers branch on.
type Kind string

const (
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrSongConflict):
		return KindConflict
	case errors.Is(err, ErrSongNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidSongInput),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidVoteInput):
		return KindValidation
	default:
		return KindInternal
	}
}
