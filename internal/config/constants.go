package config

const (
	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./library.db"

	// MinJWTSecretLength is the shortest HMAC secret accepted for access tokens
	MinJWTSecretLength = 16
)
