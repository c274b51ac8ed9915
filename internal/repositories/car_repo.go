package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vatrentals/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CarRepository interface {
	Create(ctx context.Context, car *models.Car) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Car, error)
	GetByPlateNumber(ctx context.Context, plateNumber string) (*models.Car, error)
	Update(ctx context.Context, car *models.Car) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Car, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Car, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	Search(ctx context.Context, filter *models.CarSearchFilter) ([]*models.Car, error)
}

type carRepo struct {
	db Database
}

func NewCarRepo(db Database) CarRepository {
	return &carRepo{db: db}
}

const carColumns = "id, make, model, year, plate_number, fuel_type, transmission, status, daily_rate, created_at, updated_at"

func scanCar(row pgx.Row) (*models.Car, error) {
	car := &models.Car{}
	err := row.Scan(&car.ID, &car.Make, &car.Model, &car.Year, &car.PlateNumber,
		&car.FuelType, &car.Transmission, &car.Status, &car.DailyRate, &car.CreatedAt, &car.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return car, nil
}

func (r *carRepo) Create(ctx context.Context, car *models.Car) error {
	query := `
		INSERT INTO cars (id, make, model, year, plate_number, fuel_type, transmission, status, daily_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, car.ID, car.Make, car.Model, car.Year, car.PlateNumber,
		car.FuelType, car.Transmission, car.Status, car.DailyRate)
	return err
}

func (r *carRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	car, err := scanCar(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return car, err
}

func (r *carRepo) GetByPlateNumber(ctx context.Context, plateNumber string) (*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE plate_number = $1`
	car, err := scanCar(r.db.QueryRow(ctx, query, plateNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return car, err
}

func (r *carRepo) Update(ctx context.Context, car *models.Car) error {
	query := `
		UPDATE cars
		SET make = $1, model = $2, year = $3, plate_number = $4, fuel_type = $5, transmission = $6, status = $7, daily_rate = $8, updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query, car.Make, car.Model, car.Year, car.PlateNumber,
		car.FuelType, car.Transmission, car.Status, car.DailyRate, car.ID)
	return err
}

func (r *carRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE cars SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *carRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM cars WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *carRepo) List(ctx context.Context, limit, offset int) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

func (r *carRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

func (r *carRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM cars GROUP BY status`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *carRepo) Search(ctx context.Context, filter *models.CarSearchFilter) ([]*models.Car, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + carColumns + ` FROM cars WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		queryBase += fmt.Sprintf(` AND (make ILIKE $%d OR model ILIKE $%d OR plate_number ILIKE $%d)`, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Status != nil {
		n++
		queryBase += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, *filter.Status)
	}
	if filter.FuelType != nil {
		n++
		queryBase += fmt.Sprintf(` AND fuel_type = $%d`, n)
		args = append(args, *filter.FuelType)
	}

	validSortFields := map[string]bool{"created_at": true, "make": true, "model": true, "year": true, "daily_rate": true}
	sortField := "created_at"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	n++
	queryBase += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		queryBase += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCars(rows)
}

func collectCars(rows pgx.Rows) ([]*models.Car, error) {
	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}
