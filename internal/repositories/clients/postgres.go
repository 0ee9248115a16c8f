package clients

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophcaptcha/internal/dbx"
	"github.com/dmitrijs2005/gophcaptcha/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	query :=
		`INSERT INTO clients (id, secret, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING version
		 `

	err := r.db.QueryRowContext(ctx, query,
		client.ID, client.Secret, client.CreatedAt).Scan(&client.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return client, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query :=
		`SELECT id, secret, version, created_at FROM clients
		 WHERE id = $1
		 `

	client := &models.Client{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&client.ID, &client.Secret, &client.Version, &client.CreatedAt)
	if err != nil {
		return nil, dbx.NotFound(err)
	}

	return client, nil
}
