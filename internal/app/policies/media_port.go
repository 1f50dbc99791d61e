package policies

import "context"

// MediaStore removes uploaded announcement media by object key.
type MediaStore interface {
	DeleteObjects(ctx context.Context, keys []string) error
}
