package network

import "errors"

var (
	// ErrUnknownIntersection is returned when an operation references an intersection that does not exist.
	ErrUnknownIntersection = errors.New("network: unknown intersection")

	// ErrUnknownRoad is returned when an operation references a road that does not exist.
	ErrUnknownRoad = errors.New("network: unknown road")

	// ErrUnknownHouse is returned when an operation references a house that does not exist.
	ErrUnknownHouse = errors.New("network: unknown house")

	// ErrInvalidWeight is returned for a road length that is not a finite positive number.
	ErrInvalidWeight = errors.New("network: road length must be positive")

	// ErrDuplicateRoad is returned when an explicit road id is already taken.
	ErrDuplicateRoad = errors.New("network: road id already in use")

	// ErrDuplicateHouse is returned when an explicit house id is already taken.
	ErrDuplicateHouse = errors.New("network: house id already in use")

	// ErrDuplicateConnection is returned when a road or house is connected to the same intersection twice.
	ErrDuplicateConnection = errors.New("network: connection already exists")

	// ErrHouseElsewhere is returned when a house is connected to an intersection other than its own.
	ErrHouseElsewhere = errors.New("network: house belongs to another intersection")
)
