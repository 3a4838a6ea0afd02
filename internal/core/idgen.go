package core

import "github.com/google/uuid"

// IdGen mints idempotency keys for mutating remote calls. Grounded on the
// teacher's pkg/logger.GenerateRequestID pattern, generalized to a proper
// UUID so keys are safe to dedupe on the remote side.
type IdGen interface {
	NewIdempotencyKey() string
}

type uuidGen struct{}

// NewUUIDGen returns the production IdGen backed by google/uuid.
func NewUUIDGen() IdGen { return uuidGen{} }

func (uuidGen) NewIdempotencyKey() string { return uuid.NewString() }
