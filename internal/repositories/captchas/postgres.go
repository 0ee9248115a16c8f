package captchas

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

func (r *PostgresRepository) Create(ctx context.Context, captcha *models.Captcha) (*models.Captcha, error) {
	query :=
		`INSERT INTO captchas (owner_id, answer, created, solved)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, version
		 `

	err := r.db.QueryRowContext(ctx, query,
		captcha.OwnerID, captcha.Answer, captcha.Created, captcha.Solved).
		Scan(&captcha.ID, &captcha.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return captcha, nil
}

func (r *PostgresRepository) GetByOwnerAndID(ctx context.Context, ownerID string, id int64) (*models.Captcha, error) {
	query :=
		`SELECT c.id, c.answer, c.created, c.solved, c.version,
		        o.id, o.secret, o.version, o.created_at
		 FROM captchas c
		 JOIN clients o ON o.id = c.owner_id
		 WHERE c.owner_id = $1 AND c.id = $2
		 `

	captcha := &models.Captcha{Owner: &models.Client{}}
	owner := captcha.Owner
	err := r.db.QueryRowContext(ctx, query, ownerID, id).Scan(
		&captcha.ID, &captcha.Answer, &captcha.Created, &captcha.Solved, &captcha.Version,
		&owner.ID, &owner.Secret, &owner.Version, &owner.CreatedAt,
	)
	if err != nil {
		return nil, dbx.NotFound(err)
	}
	captcha.OwnerID = owner.ID

	return captcha, nil
}

func (r *PostgresRepository) Update(ctx context.Context, captcha *models.Captcha) error {
	query :=
		`UPDATE captchas SET solved = $3, version = version + 1
		 WHERE id = $1 AND version = $2
		 `

	res, err := r.db.ExecContext(ctx, query, captcha.ID, captcha.Version, captcha.Solved)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("captcha %d: %w", captcha.ID, err)
	}

	captcha.Version++
	return nil
}
