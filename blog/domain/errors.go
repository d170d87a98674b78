package domain

import "errors"

var (
	// ErrPostNotFound is returned when an id or slug resolves to nothing.
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound is returned for a missing comment id.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrSlugTaken is returned when an insert or update loses the race for
	// a slug. Callers retry with the next candidate.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrScheduleRequired rejects a scheduled post with no publish time.
	ErrScheduleRequired = errors.New("scheduled post requires a publish time")

	// ErrInvalidStatus rejects a status outside the known set.
	ErrInvalidStatus = errors.New("invalid post status")
)
