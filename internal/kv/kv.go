// Package kv is the key-value medium the sales session is persisted into.
package kv

import "context"

// Change is an atomic batch: every Set and every Remove is applied, or none is.
type Change struct {
	Set    map[string]string
	Remove []string
}

// Store offers get/set/remove over string keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Commit(ctx context.Context, change Change) error
}
