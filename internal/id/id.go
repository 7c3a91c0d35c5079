// Package id generates unique identifiers for events and version entries.
package id

import "github.com/google/uuid"

// UUID generates random (version 4) UUID strings.
var UUID Generator = &uuidGen{}

// Generator is implemented by unique random identifier sources.
type Generator interface {
	New() string
}

type uuidGen struct{}

func (*uuidGen) New() string {
	return uuid.NewString()
}
