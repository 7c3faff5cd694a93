package redis

import "github.com/redis/rueidis"

// NewStoreForTest wraps an existing client (rueidis/mock in tests).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c, addrs: []string{"mock:6379"}}
}

// NewValkeyStoreForTest is NewStoreForTest with SCAN based listing.
func NewValkeyStoreForTest(c rueidis.Client) *Store {
	s := NewStoreForTest(c)
	s.valkey = true
	return s
}
