package llm

import (
	"errors"
	"fmt"
)

// Sentinel kinds for collaborator errors. Auth and rate-limit failures
// wrap ErrDependency, so errors.Is(err, ErrDependency) matches every
// collaborator failure while the two classes stay distinguishable for
// observability. None are retried at this layer.
var (
	ErrDependency    = errors.New("reasoning collaborator failed")
	ErrAuthorization = fmt.Errorf("%w: rejected credentials", ErrDependency)
	ErrRateLimited   = fmt.Errorf("%w: rate limited", ErrDependency)
)
