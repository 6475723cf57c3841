package domain

import "errors"

var (
	// ErrInvalidPolygon is returned for boundaries with fewer than three usable vertices.
	ErrInvalidPolygon = errors.New("invalid polygon")

	// ErrInvalidFootprint is returned when survey settings produce a non-positive scan spacing.
	ErrInvalidFootprint = errors.New("invalid footprint")

	// ErrGridTooLarge is returned when the sampling grid would exceed the configured cell limit.
	ErrGridTooLarge = errors.New("grid too large")

	// ErrOutsideApproximation is returned for boundaries where degree-linear
	// interpolation is not trusted (near the poles or spanning too far).
	ErrOutsideApproximation = errors.New("boundary outside approximation envelope")

	// ErrInvalidCruiseSpeed is returned when the flight time cannot be estimated.
	ErrInvalidCruiseSpeed = errors.New("invalid cruise speed")

	// ErrInvalidStartPoint is returned for a launch point outside the WGS 84 ranges.
	ErrInvalidStartPoint = errors.New("invalid start point")

	// ErrInvalidDroneID is returned for drone ids that cannot address a drone.
	ErrInvalidDroneID = errors.New("invalid drone id")

	// ErrInvalidPosition marks telemetry fixes that can never be accepted.
	ErrInvalidPosition = errors.New("invalid position")

	ErrNotFound     = errors.New("not found")
	ErrMissionState = errors.New("mission state conflict")
)
