package build

import "errors"

// Sentinel errors classifying which part of a bake failed. They are joined
// with the underlying cause, so classified errors stay reachable through
// errors.As.
var (
	ErrPrepare   = errors.New("kiln: prepare error")
	ErrDiscovery = errors.New("kiln: discovery error")
	ErrTransform = errors.New("kiln: transform error")
	ErrRender    = errors.New("kiln: render error")
)
