package config

import "time"

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(noAuth, adminEmail, adminPasswordHash string) *Auth {
	return &Auth{
		noAuth:            noAuth,
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		tokenTTL:          time.Hour,
	}
}

// NewSyncForTest creates a Sync config with the flag defaults
func NewSyncForTest(resume, epoch, timezone string) *Sync {
	return &Sync{
		pageSize:    200,
		maxPages:    3,
		resume:      resume,
		epoch:       epoch,
		lockTTL:     15 * time.Minute,
		callTimeout: 30 * time.Second,
		maxRetries:  3,
		maxRounds:   20,
		timezone:    timezone,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, dsn string) *Repository {
	return &Repository{
		backend:     backend,
		projectID:   projectID,
		postgresDSN: dsn,
	}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, bucket string) *Storage {
	return &Storage{
		backend: backend,
		bucket:  bucket,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
