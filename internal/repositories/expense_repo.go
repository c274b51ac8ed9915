package repositories

import (
	"context"
	"errors"
	"time"

	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	Update(ctx context.Context, expense *models.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Expense, error)
	ListByCar(ctx context.Context, carID uuid.UUID, limit, offset int) ([]*models.Expense, error)
	TotalsByCategory(ctx context.Context, from, to time.Time) (map[string]float64, error)
}

type expenseRepo struct {
	db Database
}

func NewExpenseRepo(db Database) ExpenseRepository {
	return &expenseRepo{db: db}
}

const expenseColumns = "id, car_id, category, amount, expense_date, notes, created_at, updated_at"

func scanExpense(row pgx.Row) (*models.Expense, error) {
	e := &models.Expense{}
	err := row.Scan(&e.ID, &e.CarID, &e.Category, &e.Amount, &e.ExpenseDate, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *expenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	query := `
		INSERT INTO expenses (id, car_id, category, amount, expense_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, expense.ID, expense.CarID, expense.Category,
		expense.Amount, expense.ExpenseDate, expense.Notes)
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	expense, err := scanExpense(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return expense, err
}

func (r *expenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	query := `
		UPDATE expenses
		SET car_id = $1, category = $2, amount = $3, expense_date = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, expense.CarID, expense.Category, expense.Amount,
		expense.ExpenseDate, expense.Notes, expense.ID)
	return err
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}

func (r *expenseRepo) List(ctx context.Context, limit, offset int) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY expense_date DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *expenseRepo) ListByCar(ctx context.Context, carID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE car_id = $1 ORDER BY expense_date DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, carID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *expenseRepo) TotalsByCategory(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE expense_date BETWEEN $1 AND $2
		GROUP BY category
	`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals[category] = total
	}
	return totals, rows.Err()
}

func collectExpenses(rows pgx.Rows) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}
