package kv

import "context"

type prefixed struct {
	Store
	prefix string
}

// WithPrefix returns a view of s in which every key is prepended with
// prefix. Ping passes through.
func WithPrefix(s Store, prefix string) Store {
	return prefixed{Store: s, prefix: prefix}
}

func (p prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p prefixed) Set(ctx context.Context, key, value string) error {
	return p.Store.Set(ctx, p.prefix+key, value)
}
