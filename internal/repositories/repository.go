package repositories

import "context"

// Repository aggregates all repository interfaces of the service
type Repository interface {
	// Survey domain
	Survey() SurveyRepository
	Question() QuestionRepository

	// Submission domain
	Submission() SubmissionRepository
	Response() ResponseRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
