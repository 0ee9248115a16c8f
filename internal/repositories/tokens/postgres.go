package tokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.VerificationToken) (*models.VerificationToken, error) {
	query :=
		`INSERT INTO verification_tokens (captcha_id, answer_to_captcha, activated)
		 VALUES ($1, $2, $3)
		 RETURNING id, version
		 `

	err := r.db.QueryRowContext(ctx, query,
		token.CaptchaID, token.AnswerToCaptcha, token.Activated).
		Scan(&token.ID, &token.Version)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) GetByKeys(ctx context.Context, ownerID string, captchaID, tokenID int64) (*models.VerificationToken, error) {
	query :=
		`SELECT t.id, t.answer_to_captcha, t.activated, t.version,
		        c.id, c.answer, c.created, c.solved, c.version,
		        o.id, o.secret, o.version, o.created_at
		 FROM verification_tokens t
		 JOIN captchas c ON c.id = t.captcha_id
		 JOIN clients o ON o.id = c.owner_id
		 WHERE o.id = $1 AND c.id = $2 AND t.id = $3
		 `

	owner := &models.Client{}
	captcha := &models.Captcha{Owner: owner}
	token := &models.VerificationToken{Captcha: captcha}

	err := r.db.QueryRowContext(ctx, query, ownerID, captchaID, tokenID).Scan(
		&token.ID, &token.AnswerToCaptcha, &token.Activated, &token.Version,
		&captcha.ID, &captcha.Answer, &captcha.Created, &captcha.Solved, &captcha.Version,
		&owner.ID, &owner.Secret, &owner.Version, &owner.CreatedAt,
	)
	if err != nil {
		return nil, dbx.NotFound(err)
	}
	captcha.OwnerID = owner.ID
	token.CaptchaID = captcha.ID

	return token, nil
}

func (r *PostgresRepository) Update(ctx context.Context, token *models.VerificationToken) error {
	query :=
		`UPDATE verification_tokens SET activated = $3, version = version + 1
		 WHERE id = $1 AND version = $2
		 `

	res, err := r.db.ExecContext(ctx, query, token.ID, token.Version, token.Activated)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.ExpectAffected(res); err != nil {
		return fmt.Errorf("token %d: %w", token.ID, err)
	}

	token.Version++
	return nil
}
