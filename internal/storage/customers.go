package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/suteetoe/storefront/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// GetAllCustomers lists customers, newest first
func (s *TenantStorage) GetAllCustomers(ctx context.Context) []model.Customer {
	return listRows[model.Customer](ctx, s, "customer", "list", nil)
}

// GetCustomerByID returns the customer or nil
func (s *TenantStorage) GetCustomerByID(ctx context.Context, id int64) *model.Customer {
	return findRow[model.Customer](ctx, s, "customer", "get", "id = ?", id)
}

// GetCustomerByPhone returns the customer with phone or nil
func (s *TenantStorage) GetCustomerByPhone(ctx context.Context, phone string) *model.Customer {
	return findRow[model.Customer](ctx, s, "customer", "get_by_phone", "phone = ?", phone)
}

// CreateCustomer returns the customer with the given phone, inserting it
// when absent. Concurrent calls for one phone all return the same row.
func (s *TenantStorage) CreateCustomer(ctx context.Context, in model.NewCustomer) (*model.Customer, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: customer phone is required", ErrValidation)
	}

	if existing := s.GetCustomerByPhone(ctx, phone); existing != nil {
		return existing, nil
	}

	defer s.observe("customer", "create")()
	log := s.logFor(ctx)

	now := s.timestamp()
	customer := model.Customer{
		Phone:      phone,
		Name:       valueOr(in.Name, ""),
		Email:      valueOr(in.Email, ""),
		WhatsappID: valueOr(in.WhatsappID, ""),
		Address:    valueOr(in.Address, ""),
		Notes:      valueOr(in.Notes, ""),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	result := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Create(&customer)

	switch {
	case result.Error == nil && result.RowsAffected > 0:
		log.Info("Customer created", zap.Int64("customer_id", customer.ID), zap.String("phone", phone))
		return &customer, nil
	case result.Error == nil:
		log.Info("Customer phone already taken, reusing existing row", zap.String("phone", phone))
	case isDuplicateKey(result.Error):
		log.Warn("Duplicate customer insert", append(errorFields(result.Error), zap.String("phone", phone))...)
	default:
		log.Error("Failed to create customer", append(errorFields(result.Error), zap.String("phone", phone))...)
		return nil, result.Error
	}

	s.metrics.RecordConflict("customer")
	existing := s.GetCustomerByPhone(ctx, phone)
	if existing == nil {
		log.Error("Customer conflict reported but no row found", zap.String("phone", phone))
		return nil, fmt.Errorf("%w: customer with phone %s conflicted but could not be read", ErrInconsistentState, phone)
	}
	return existing, nil
}

// CreateOrUpdateCustomer upserts by phone in one statement. On conflict the
// supplied name and whatsapp id replace the stored ones and last_contact is
// refreshed.
func (s *TenantStorage) CreateOrUpdateCustomer(ctx context.Context, in model.NewCustomer) (*model.Customer, error) {
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: customer phone is required", ErrValidation)
	}

	defer s.observe("customer", "upsert")()
	log := s.logFor(ctx)

	now := s.timestamp()
	customer := model.Customer{
		Phone:       phone,
		Name:        valueOr(in.Name, ""),
		Email:       valueOr(in.Email, ""),
		WhatsappID:  valueOr(in.WhatsappID, ""),
		Address:     valueOr(in.Address, ""),
		Notes:       valueOr(in.Notes, ""),
		LastContact: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	assign := []string{"last_contact", "updated_at"}
	if in.Name != nil {
		assign = append(assign, "name")
	}
	if in.WhatsappID != nil {
		assign = append(assign, "whatsapp_id")
	}

	err := s.conn(ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "phone"}},
				DoUpdates: clause.AssignmentColumns(assign),
			},
			clause.Returning{},
		).
		Create(&customer).Error
	if err != nil {
		log.Error("Failed to upsert customer", append(errorFields(err), zap.String("phone", phone))...)
		return nil, err
	}

	log.Info("Customer upserted", zap.Int64("customer_id", customer.ID), zap.String("phone", phone))
	return &customer, nil
}

// UpdateCustomer applies the set fields of patch; nil when the customer does not exist
func (s *TenantStorage) UpdateCustomer(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error) {
	return updateRow[model.Customer](ctx, s, "customer", id, patch.Updates(s.timestamp()))
}

// DeleteCustomer removes a customer
func (s *TenantStorage) DeleteCustomer(ctx context.Context, id int64) error {
	return deleteRow[model.Customer](ctx, s, "customer", id)
}
