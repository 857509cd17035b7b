package services

import (
	"bytes"
	"context"
	"fmt"

	"shop-service/internal/domain"
	"shop-service/internal/receipt"
	"shop-service/internal/repository"
)

type ReceiptService struct {
	repo     repository.OrderRepository
	renderer *receipt.Renderer
}

func NewReceiptService(r repository.OrderRepository, renderer *receipt.Renderer) *ReceiptService {
	return &ReceiptService{repo: r, renderer: renderer}
}

type ReceiptFile struct {
	Filename string
	Content  []byte
}

func (s *ReceiptService) Generate(ctx context.Context, orderID uint64) (*ReceiptFile, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, o); err != nil {
		return nil, fmt.Errorf("render receipt for order %d: %w", orderID, err)
	}
	return &ReceiptFile{Filename: receipt.Filename(o.ID), Content: buf.Bytes()}, nil
}
