package repositories

import (
	"context"
	"errors"
	"time"

	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InsuranceRepository interface {
	Create(ctx context.Context, policy *models.InsurancePolicy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InsurancePolicy, error)
	Update(ctx context.Context, policy *models.InsurancePolicy) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.InsurancePolicy, error)
	ListByCar(ctx context.Context, carID uuid.UUID) ([]*models.InsurancePolicy, error)
	ListExpiringBefore(ctx context.Context, date time.Time) ([]*models.InsurancePolicy, error)
}

type insuranceRepo struct {
	db Database
}

func NewInsuranceRepo(db Database) InsuranceRepository {
	return &insuranceRepo{db: db}
}

const insuranceColumns = "id, car_id, policy_number, provider, premium, starts_on, expires_on, created_at, updated_at"

func scanPolicy(row pgx.Row) (*models.InsurancePolicy, error) {
	p := &models.InsurancePolicy{}
	err := row.Scan(&p.ID, &p.CarID, &p.PolicyNumber, &p.Provider, &p.Premium,
		&p.StartsOn, &p.ExpiresOn, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *insuranceRepo) Create(ctx context.Context, policy *models.InsurancePolicy) error {
	query := `
		INSERT INTO insurance_policies (id, car_id, policy_number, provider, premium, starts_on, expires_on, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, policy.ID, policy.CarID, policy.PolicyNumber,
		policy.Provider, policy.Premium, policy.StartsOn, policy.ExpiresOn)
	return err
}

func (r *insuranceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InsurancePolicy, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurance_policies WHERE id = $1`
	policy, err := scanPolicy(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return policy, err
}

func (r *insuranceRepo) Update(ctx context.Context, policy *models.InsurancePolicy) error {
	query := `
		UPDATE insurance_policies
		SET policy_number = $1, provider = $2, premium = $3, starts_on = $4, expires_on = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, policy.PolicyNumber, policy.Provider, policy.Premium,
		policy.StartsOn, policy.ExpiresOn, policy.ID)
	return err
}

func (r *insuranceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM insurance_policies WHERE id = $1`, id)
	return err
}

func (r *insuranceRepo) List(ctx context.Context, limit, offset int) ([]*models.InsurancePolicy, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurance_policies ORDER BY expires_on LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPolicies(rows)
}

func (r *insuranceRepo) ListByCar(ctx context.Context, carID uuid.UUID) ([]*models.InsurancePolicy, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurance_policies WHERE car_id = $1 ORDER BY expires_on`
	rows, err := r.db.Query(ctx, query, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPolicies(rows)
}

func (r *insuranceRepo) ListExpiringBefore(ctx context.Context, date time.Time) ([]*models.InsurancePolicy, error) {
	query := `SELECT ` + insuranceColumns + ` FROM insurance_policies WHERE expires_on <= $1 ORDER BY expires_on`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPolicies(rows)
}

func collectPolicies(rows pgx.Rows) ([]*models.InsurancePolicy, error) {
	var policies []*models.InsurancePolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}
