package service

import "github.com/google/uuid"

// DefaultUUIDGenerator generates UUIDs using google/uuid
type DefaultUUIDGenerator struct{}

// NewString returns a new random UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
