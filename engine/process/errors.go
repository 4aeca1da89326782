package process

import "errors"

var (
	ErrBucketNotActive    = errors.New("process: bid not in active state")
	ErrVaultNotFound      = errors.New("process: vid not owned by current component")
	ErrResourceNotFound   = errors.New("process: resource address not found")
	ErrComponentNotFound  = errors.New("process: component address not found")
	ErrPackageNotFound    = errors.New("process: package address not found")
	ErrDanglingBucket     = errors.New("process: bucket left active at frame exit")
	ErrMaxDepthExceeded   = errors.New("process: call depth exceeded")
	ErrAuthRequired       = errors.New("process: operation requires an authority proof")
	ErrLazyMapNotFound    = errors.New("process: lazy map not owned by current component")
	ErrNoCurrentComponent = errors.New("process: no component bound to this frame")
)
