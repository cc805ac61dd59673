package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNameRequired = errors.New("course name is required")
	ErrChoiceNotFound     = errors.New("choice not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotEnrolled        = errors.New("not enrolled in course")
	ErrAlreadyEnrolled    = errors.New("already enrolled in course")
	ErrInvalidFile        = errors.New("invalid file")
	ErrProfileExists      = errors.New("profile already exists")
)

// Messages shown on the registration and login pages.
const (
	MsgUserExists         = "User already exists."
	MsgInvalidCredentials = "Invalid username or password."
)
