package room

import "errors"

var (
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidCode      = errors.New("invalid room code")
	ErrEmptyMessage     = errors.New("empty message")
	ErrPermissionDenied = errors.New("permission denied")
	ErrMediaRejected    = errors.New("media rejected")
	ErrMediaNotFound    = errors.New("media not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrRoomFull         = errors.New("room is full")
	ErrNoFreeCode       = errors.New("no free room code")
)
