package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vatrentals/internal/common"
	"vatrentals/internal/models"
	"vatrentals/internal/repositories"
)

type ExpenseService interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpenseByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	ListExpenses(ctx context.Context, limit, offset int) ([]*models.Expense, error)
	ListExpensesByCar(ctx context.Context, carID uuid.UUID, limit, offset int) ([]*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	carRepo     repositories.CarRepository
}

func NewExpenseService(expenseRepo repositories.ExpenseRepository, carRepo repositories.CarRepository) ExpenseService {
	return &expenseService{expenseRepo: expenseRepo, carRepo: carRepo}
}

func (s *expenseService) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if err := common.ValidateRequiredString(expense.Category, "category"); err != nil {
		return err
	}
	if err := common.ValidatePositiveFloat(expense.Amount, "amount", 10000000); err != nil {
		return err
	}
	if err := common.SanitizeHTMLField(expense.Notes, "expense notes"); err != nil {
		return err
	}

	if expense.CarID != nil {
		car, err := s.carRepo.GetByID(ctx, *expense.CarID)
		if err != nil {
			return fmt.Errorf("retrieve car: %w", err)
		}
		if car == nil {
			return common.NotFoundf("car %s", *expense.CarID)
		}
	}

	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	if expense.ExpenseDate.IsZero() {
		expense.ExpenseDate = time.Now()
	}

	return s.expenseRepo.Create(ctx, expense)
}

func (s *expenseService) GetExpenseByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, common.NotFoundf("expense %s", id)
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, limit, offset int) ([]*models.Expense, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.expenseRepo.List(ctx, limit, offset)
}

func (s *expenseService) ListExpensesByCar(ctx context.Context, carID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.expenseRepo.ListByCar(ctx, carID, limit, offset)
}

func (s *expenseService) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	existing, err := s.expenseRepo.GetByID(ctx, expense.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return common.NotFoundf("expense %s", expense.ID)
	}
	if err := common.ValidatePositiveFloat(expense.Amount, "amount", 10000000); err != nil {
		return err
	}
	if err := common.SanitizeHTMLField(expense.Notes, "expense notes"); err != nil {
		return err
	}
	return s.expenseRepo.Update(ctx, expense)
}

func (s *expenseService) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.expenseRepo.Delete(ctx, id)
}
