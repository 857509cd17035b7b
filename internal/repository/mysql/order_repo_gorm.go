package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"shop-service/internal/domain"
	"shop-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const itemBatchSize = 100

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreateWithItems(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if order.ID == 0 {
			return errors.New("failed to assign order ID")
		}
		if len(order.Items) == 0 {
			return nil
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(&order.Items, itemBatchSize).Error; err != nil {
			return err
		}
		for _, it := range order.Items {
			if it.ID == 0 {
				return errors.New("failed to assign order item IDs")
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Order save error, rolled back: %v", err)
		order.ID = 0
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = 0
		}
		return err
	}

	log.Printf("Order saved successfully with ID: %d (%d items)", order.ID, len(order.Items))
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		log.Printf("List orders error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, status domain.OrderStatus) (*domain.Order, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		log.Printf("UpdateStatus error: %v", res.Error)
		return nil, res.Error
	}
	// MySQL reports 0 affected rows when the value is unchanged, so existence
	// is decided by the reload.
	return r.FindByID(ctx, id)
}

func (r *orderRepo) SetPaymentSession(ctx context.Context, id uint64, sessionID string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Update("payment_session_id", sessionID).Error
}

func (r *orderRepo) MarkPaid(ctx context.Context, orderID uint64, event *domain.PaymentEvent) (*domain.Order, bool, error) {
	transitioned := false
	found := true

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.WebhookEvent{
			EventID:     event.ID,
			EventType:   event.Type,
			OrderID:     orderID,
			ProcessedAt: time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			log.Printf("Webhook event %s already processed, skipping", event.ID)
			return nil
		}

		if o.Status != domain.StatusPending {
			log.Printf("Order %d is %s, not moving to paid", o.ID, o.Status)
			return nil
		}

		if err := tx.Model(&o).Update("status", domain.StatusPaid).Error; err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		log.Printf("MarkPaid error for order %d: %v", orderID, err)
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	o, err := r.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return o, transitioned, nil
}
