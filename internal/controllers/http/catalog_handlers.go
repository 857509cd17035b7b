package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"shop-service/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) serveCached(c *gin.Context, key string, load func(ctx context.Context) (any, error)) {
	data, err := h.cache.fetch(c.Request.Context(), key, load)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *Handler) ListCategories(c *gin.Context) {
	h.serveCached(c, "categories", func(ctx context.Context) (any, error) {
		return h.catalog.ListCategories(ctx)
	})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.serveCached(c, "category:"+strconv.FormatUint(id, 10), func(ctx context.Context) (any, error) {
		return h.catalog.GetCategory(ctx, id)
	})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.catalog.SaveCategory(c.Request.Context(), &domain.Category{
		Name: req.Name, Description: req.Description, Image: req.Image,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	cat, err := h.catalog.SaveCategory(c.Request.Context(), &domain.Category{
		ID: id, Name: req.Name, Description: req.Description, Image: req.Image,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func productFilter(c *gin.Context) (domain.ProductFilter, error) {
	var f domain.ProductFilter
	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid category %q", v)
		}
		f.CategoryID = &id
	}
	if v := c.Query("featured"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return f, err
		}
		f.Featured = &b
	}
	if v := c.Query("bestseller"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return f, err
		}
		f.Bestseller = &b
	}
	return f, nil
}

func filterKey(f domain.ProductFilter) string {
	key := "products"
	if f.CategoryID != nil {
		key += ":c" + strconv.FormatUint(*f.CategoryID, 10)
	}
	if f.Featured != nil {
		key += ":f" + strconv.FormatBool(*f.Featured)
	}
	if f.Bestseller != nil {
		key += ":b" + strconv.FormatBool(*f.Bestseller)
	}
	return key
}

func (h *Handler) ListProducts(c *gin.Context) {
	f, err := productFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	h.serveCached(c, filterKey(f), func(ctx context.Context) (any, error) {
		ps, err := h.catalog.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		return newProductResponses(ps), nil
	})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.serveCached(c, "product:"+strconv.FormatUint(id, 10), func(ctx context.Context) (any, error) {
		p, err := h.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return newProductResponse(p), nil
	})
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, newProductResponse(p))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(http.StatusOK, newProductResponse(p))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ProductImageRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := h.catalog.AddProductImage(c.Request.Context(), id, req.Image)
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, img)
}

func (h *Handler) DeleteProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProductImage(c.Request.Context(), id, imageID); err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListCollections(c *gin.Context) {
	h.serveCached(c, "collections", func(ctx context.Context) (any, error) {
		cs, err := h.catalog.ListCollections(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]CollectionResponse, 0, len(cs))
		for i := range cs {
			out = append(out, newCollectionResponse(&cs[i]))
		}
		return out, nil
	})
}

func (h *Handler) GetCollection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.serveCached(c, "collection:"+strconv.FormatUint(id, 10), func(ctx context.Context) (any, error) {
		col, err := h.catalog.GetCollection(ctx, id)
		if err != nil {
			return nil, err
		}
		return newCollectionResponse(col), nil
	})
}

func (h *Handler) saveCollection(c *gin.Context, id uint64, status int) {
	var req CollectionRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	col := &domain.Collection{ID: id, Name: req.Name, Description: req.Description, Image: req.Image}
	saved, err := h.catalog.SaveCollection(c.Request.Context(), col, req.Products)
	if err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.JSON(status, newCollectionResponse(saved))
}

func (h *Handler) CreateCollection(c *gin.Context) {
	h.saveCollection(c, 0, http.StatusCreated)
}

func (h *Handler) UpdateCollection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	h.saveCollection(c, id, http.StatusOK)
}

func (h *Handler) DeleteCollection(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCollection(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	h.cache.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}
