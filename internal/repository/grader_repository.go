package repository

import (
	"context"

	"github.com/fluentpath/ielts-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GraderRepository handles grader account data access.
type GraderRepository struct {
	pool *pgxpool.Pool
}

// NewGraderRepository creates a new GraderRepository.
func NewGraderRepository(pool *pgxpool.Pool) *GraderRepository {
	return &GraderRepository{pool: pool}
}

// GetByID retrieves a grader by ID.
func (r *GraderRepository) GetByID(ctx context.Context, id int) (*model.Grader, error) {
	g := &model.Grader{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, permissions, created_at, updated_at
		 FROM graders WHERE id = $1`, id,
	).Scan(&g.ID, &g.Email, &g.Name, &g.PasswordHash, &g.Permissions, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetByEmail retrieves a grader by email for login.
func (r *GraderRepository) GetByEmail(ctx context.Context, email string) (*model.Grader, error) {
	g := &model.Grader{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, permissions, created_at, updated_at
		 FROM graders WHERE email = $1`, email,
	).Scan(&g.ID, &g.Email, &g.Name, &g.PasswordHash, &g.Permissions, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new grader account.
func (r *GraderRepository) Create(ctx context.Context, g *model.Grader) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO graders (email, name, password_hash, permissions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		g.Email, g.Name, g.PasswordHash, g.Permissions,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
}
