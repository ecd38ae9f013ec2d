package domain

import (
	"fmt"

	"github.com/olusolaa/gateway-sync/internal/errors"
)

// System names one side of the reconciliation.
type System string

const (
	SystemGateway      System = "gateway"
	SystemControlPlane System = "control_plane"
)

func (s System) String() string {
	return string(s)
}

func (s System) Valid() bool {
	return s == SystemGateway || s == SystemControlPlane
}

// Direction of a sync run. Push copies gateway state to the control plane,
// pull copies the other way.
type Direction string

const (
	DirectionPush Direction = "push"
	DirectionPull Direction = "pull"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionPush, DirectionPull:
		return Direction(s), nil
	}
	return "", errors.New(errors.CodeValidation, fmt.Sprintf("invalid sync direction: %s", s))
}

func (d Direction) String() string {
	return string(d)
}

func (d Direction) Source() System {
	if d == DirectionPull {
		return SystemControlPlane
	}
	return SystemGateway
}

func (d Direction) Target() System {
	if d == DirectionPull {
		return SystemGateway
	}
	return SystemControlPlane
}
