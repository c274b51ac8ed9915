package caching

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vatrentals/internal/models"
)

type CacheService interface {
	// Car caching
	GetCar(ctx context.Context, carID uuid.UUID) (*models.Car, error)
	SetCar(ctx context.Context, car *models.Car, ttl time.Duration) error
	DeleteCar(ctx context.Context, carID uuid.UUID) error

	// Customer caching
	GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	SetCustomer(ctx context.Context, customer *models.Customer, ttl time.Duration) error
	DeleteCustomer(ctx context.Context, customerID uuid.UUID) error

	// Dashboard analytics caching
	GetDashboard(ctx context.Context) (map[string]interface{}, error)
	SetDashboard(ctx context.Context, dashboard map[string]interface{}, ttl time.Duration) error

	// Reminder feed caching
	GetReminderFeed(ctx context.Context) ([]*models.Reminder, error)
	SetReminderFeed(ctx context.Context, feed []*models.Reminder, ttl time.Duration) error

	// InvalidateDerived drops all derived keys (dashboard, reminder
	// feed). Called after any booking or fleet mutation.
	InvalidateDerived(ctx context.Context) error

	Ping(ctx context.Context) error
}

const (
	carKeyPrefix      = "vatrentals:car:"
	customerKeyPrefix = "vatrentals:customer:"
	dashboardKey      = "vatrentals:analytics:dashboard"
	reminderFeedKey   = "vatrentals:reminders:feed"
)

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetCar(ctx context.Context, carID uuid.UUID) (*models.Car, error) {
	data, err := r.client.Get(ctx, carKeyPrefix+carID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var car models.Car
	if err := json.Unmarshal(data, &car); err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *redisCacheService) SetCar(ctx context.Context, car *models.Car, ttl time.Duration) error {
	data, err := json.Marshal(car)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, carKeyPrefix+car.ID.String(), data, ttl).Err()
}

func (r *redisCacheService) DeleteCar(ctx context.Context, carID uuid.UUID) error {
	return r.client.Del(ctx, carKeyPrefix+carID.String()).Err()
}

func (r *redisCacheService) GetCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	data, err := r.client.Get(ctx, customerKeyPrefix+customerID.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var customer models.Customer
	if err := json.Unmarshal(data, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *redisCacheService) SetCustomer(ctx context.Context, customer *models.Customer, ttl time.Duration) error {
	data, err := json.Marshal(customer)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, customerKeyPrefix+customer.ID.String(), data, ttl).Err()
}

func (r *redisCacheService) DeleteCustomer(ctx context.Context, customerID uuid.UUID) error {
	return r.client.Del(ctx, customerKeyPrefix+customerID.String()).Err()
}

func (r *redisCacheService) GetDashboard(ctx context.Context) (map[string]interface{}, error) {
	data, err := r.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var dashboard map[string]interface{}
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, dashboard map[string]interface{}, ttl time.Duration) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dashboardKey, data, ttl).Err()
}

func (r *redisCacheService) GetReminderFeed(ctx context.Context) ([]*models.Reminder, error) {
	data, err := r.client.Get(ctx, reminderFeedKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var feed []*models.Reminder
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, err
	}
	return feed, nil
}

func (r *redisCacheService) SetReminderFeed(ctx context.Context, feed []*models.Reminder, ttl time.Duration) error {
	data, err := json.Marshal(feed)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, reminderFeedKey, data, ttl).Err()
}

func (r *redisCacheService) InvalidateDerived(ctx context.Context) error {
	return r.client.Del(ctx, dashboardKey, reminderFeedKey).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
