package utils

// AuthCachePrefix namespaces cached auth token hashes in Redis.
const AuthCachePrefix = "authToken:"
