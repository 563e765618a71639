package redis

const (
	// KeyPrefix namespaces every linkbox key in a shared redis database.
	KeyPrefix = "linkbox:kv:"
)

// Key returns the Redis key for a storage key.
func Key(name string) string {
	return KeyPrefix + name
}
