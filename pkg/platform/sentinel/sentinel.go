package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: no entry for the key (cache miss)
//   - ErrUnavailable: the resource is not ready yet or temporarily unreachable
//
// For validation errors (bad input, bad query parameters), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
