package runtime

import "github.com/cuemby/invoker/pkg/types"

// StaticImageResolver resolves an execution kind to a fixed image
// reference via a lookup table, e.g. {"nodejs:20": "invoker/runtime-nodejs20:latest"}.
type StaticImageResolver map[string]string

func (r StaticImageResolver) Resolve(exec types.ExecParams) (string, error) {
	image, ok := r[exec.Kind]
	if !ok {
		return "", &UnknownKindError{Kind: exec.Kind}
	}
	return image, nil
}

// UnknownKindError reports a kind with no configured runtime image.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return "no runtime image configured for kind " + e.Kind
}
