package domain

import "errors"

var (
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidStatus      = errors.New("invalid availability status")
	ErrDateInPast         = errors.New("date is in the past")
	ErrDayNotBookable     = errors.New("day is not open for booking")
	ErrServiceIDRequired  = errors.New("service id required")
	ErrBookingNotFound    = errors.New("no booking found")
	ErrCodeCollision      = errors.New("confirmation code already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrServiceNotFound    = errors.New("service not found")
)
