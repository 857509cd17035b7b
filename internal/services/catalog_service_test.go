package services

import (
	"context"
	"errors"
	"testing"

	"shop-service/internal/domain"
	"shop-service/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_SaveCategory(t *testing.T) {
	tests := []struct {
		name         string
		category     domain.Category
		setupMocks   func(*mocks.MockCatalogRepository)
		expectedKind domain.ErrorKind
	}{
		{
			name:     "create",
			category: domain.Category{Name: "  Hair care "},
			setupMocks: func(repo *mocks.MockCatalogRepository) {
				repo.On("SaveCategory", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
					return c.Name == "Hair care"
				})).Return(nil)
			},
		},
		{
			name:         "blank name",
			category:     domain.Category{Name: " "},
			setupMocks:   func(repo *mocks.MockCatalogRepository) {},
			expectedKind: domain.KindValidation,
		},
		{
			name:     "update missing category",
			category: domain.Category{ID: 4, Name: "Skin"},
			setupMocks: func(repo *mocks.MockCatalogRepository) {
				repo.On("FindCategory", mock.Anything, uint64(4)).Return(nil, nil)
			},
			expectedKind: domain.KindNotFound,
		},
		{
			name:     "duplicate name",
			category: domain.Category{Name: "Skin"},
			setupMocks: func(repo *mocks.MockCatalogRepository) {
				repo.On("SaveCategory", mock.Anything, mock.Anything).
					Return(&domain.Error{Kind: domain.KindConflict, Message: "category name already exists"})
			},
			expectedKind: domain.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockCatalogRepository)
			tt.setupMocks(repo)

			c := tt.category
			saved, err := NewCatalogService(repo).SaveCategory(context.Background(), &c)

			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, domain.KindOf(err))
				assert.Nil(t, saved)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Hair care", saved.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	categoryID := uint64(2)

	t.Run("stores and reloads", func(t *testing.T) {
		repo := new(mocks.MockCatalogRepository)
		p := CreateMockProduct(0, "Shampoo", "10.00")
		p.CategoryID = &categoryID
		p.Images = []domain.ProductImage{{Image: "https://cdn.example.com/extra.png"}}

		repo.On("FindCategory", mock.Anything, categoryID).Return(&domain.Category{ID: categoryID, Name: "Hair"}, nil)
		repo.On("SaveProduct", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Product).ID = 11
		})
		reloaded := p
		reloaded.ID = 11
		reloaded.Category = &domain.Category{ID: categoryID, Name: "Hair"}
		repo.On("FindProduct", mock.Anything, uint64(11)).Return(&reloaded, nil)

		got, err := NewCatalogService(repo).CreateProduct(context.Background(), &p)

		require.NoError(t, err)
		assert.Equal(t, uint64(11), got.ID)
		require.NotNil(t, got.CategoryName())
		assert.Equal(t, "Hair", *got.CategoryName())
		repo.AssertExpectations(t)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		repo := new(mocks.MockCatalogRepository)
		repo.On("FindCategory", mock.Anything, categoryID).Return(nil, nil)

		p := domain.Product{CategoryID: &categoryID, Price: decimal.NewFromInt(-1)}

		_, err := NewCatalogService(repo).CreateProduct(context.Background(), &p)

		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.KindValidation, de.Kind)
		for _, f := range []string{"name", "description", "image", "price", "category"} {
			assert.Contains(t, de.Fields, f)
		}
		repo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_UpdateProductKeepsImages(t *testing.T) {
	repo := new(mocks.MockCatalogRepository)
	existing := CreateMockProduct(5, "Shampoo", "10.00")
	existing.Images = []domain.ProductImage{{ID: 1, ProductID: 5, Image: "a.png"}}
	repo.On("FindProduct", mock.Anything, uint64(5)).Return(&existing, nil)
	repo.On("SaveProduct", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == 5 && p.Images == nil && p.Name == "Shampoo XL"
	})).Return(nil)

	update := CreateMockProduct(0, "Shampoo XL", "11.00")
	update.Images = []domain.ProductImage{{Image: "ignored.png"}}
	_, err := NewCatalogService(repo).UpdateProduct(context.Background(), 5, &update)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCatalogService_Deletes(t *testing.T) {
	repo := new(mocks.MockCatalogRepository)
	repo.On("DeleteProduct", mock.Anything, uint64(1)).Return(true, nil)
	repo.On("DeleteProduct", mock.Anything, uint64(2)).Return(false, nil)
	repo.On("DeleteCategory", mock.Anything, uint64(3)).Return(false, nil)
	repo.On("DeleteCollection", mock.Anything, uint64(4)).Return(false, nil)
	repo.On("DeleteProductImage", mock.Anything, uint64(1), uint64(9)).Return(false, nil)
	service := NewCatalogService(repo)

	assert.NoError(t, service.DeleteProduct(context.Background(), 1))
	assert.True(t, errors.Is(service.DeleteProduct(context.Background(), 2), domain.ErrProductNotFound))
	assert.True(t, errors.Is(service.DeleteCategory(context.Background(), 3), domain.ErrCategoryNotFound))
	assert.True(t, errors.Is(service.DeleteCollection(context.Background(), 4), domain.ErrCollectionNotFound))
	assert.True(t, errors.Is(service.DeleteProductImage(context.Background(), 1, 9), domain.ErrImageNotFound))
}

func TestCatalogService_SaveCollection(t *testing.T) {
	valid := func() *domain.Collection {
		return &domain.Collection{Name: "Summer", Description: "Sun care", Image: "summer.png"}
	}

	t.Run("replaces product set", func(t *testing.T) {
		repo := new(mocks.MockCatalogRepository)
		repo.On("SaveCollection", mock.Anything, mock.AnythingOfType("*domain.Collection"), []uint64{1, 2}).Return(nil)

		c, err := NewCatalogService(repo).SaveCollection(context.Background(), valid(), []uint64{1, 2})

		require.NoError(t, err)
		assert.Equal(t, "Summer", c.Name)
		repo.AssertExpectations(t)
	})

	t.Run("unknown product becomes a field error", func(t *testing.T) {
		repo := new(mocks.MockCatalogRepository)
		repo.On("SaveCollection", mock.Anything, mock.Anything, []uint64{77}).Return(domain.ProductNotFound(77))

		_, err := NewCatalogService(repo).SaveCollection(context.Background(), valid(), []uint64{77})

		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.KindValidation, de.Kind)
		assert.Equal(t, "product 77 not found", de.Fields["products"])
	})

	t.Run("missing fields", func(t *testing.T) {
		repo := new(mocks.MockCatalogRepository)

		_, err := NewCatalogService(repo).SaveCollection(context.Background(), &domain.Collection{}, nil)

		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		repo.AssertNotCalled(t, "SaveCollection", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogService_ListsNeverNil(t *testing.T) {
	repo := new(mocks.MockCatalogRepository)
	repo.On("ListCategories", mock.Anything).Return(nil, nil)
	repo.On("ListProducts", mock.Anything, domain.ProductFilter{}).Return(nil, nil)
	repo.On("ListCollections", mock.Anything).Return(nil, nil)
	service := NewCatalogService(repo)

	cs, err := service.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cs)
	ps, err := service.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.NotNil(t, ps)
	cols, err := service.ListCollections(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cols)
}
