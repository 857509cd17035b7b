package services

import (
	"context"
	"log"
	"sync"

	"shop-service/internal/domain"
	rabbit "shop-service/internal/infra/rabbitmq"
)

// eventPublisher sends order events off the request path.
type eventPublisher struct {
	publisher rabbit.PublisherInterface
	wg        sync.WaitGroup
}

func (p *eventPublisher) publishOrderEvent(pattern string, order *domain.Order) {
	if p.publisher == nil {
		return
	}
	evt := domain.NewOrderEvent(order)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.Printf("Publishing %s event for order %d", pattern, evt.OrderID)
		if err := p.publisher.Publish(context.Background(), pattern, evt); err != nil {
			log.Printf("Failed to publish %s event: %v", pattern, err)
		}
	}()
}

// wait blocks until every event published so far has been handed to the broker.
func (p *eventPublisher) wait() {
	p.wg.Wait()
}
