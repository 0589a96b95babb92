package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"techmart/internal/errors"
	"techmart/internal/service"
)

const galleryMaxFiles = 5

// ProductHandler handles product endpoints, including multipart image upload.
type ProductHandler struct {
	productService service.ProductService
	uploadDir      string
}

// NewProductHandler creates a new product handler.
func NewProductHandler(productService service.ProductService, uploadDir string) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		uploadDir:      uploadDir,
	}
}

// Create godoc
// @Summary Create a product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param slug formData string true "Slug"
// @Param categoryId formData string true "Category ID"
// @Param price formData number true "Price"
// @Param featuredImage formData file false "Featured image"
// @Param gallery formData file false "Gallery images (max 5)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /products/createproduct [post]
func (h *ProductHandler) Create(c echo.Context) error {
	categoryID, err := uuid.Parse(c.FormValue("categoryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category ID")
	}

	price, err := decimal.NewFromString(c.FormValue("price"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
	}

	input := service.ProductInput{
		Name:        c.FormValue("name"),
		Slug:        c.FormValue("slug"),
		CategoryID:  categoryID,
		Description: c.FormValue("description"),
		Price:       price,
		Bestseller:  c.FormValue("bestseller") == "true",
	}
	if input.Name == "" || input.Slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and slug are required")
	}

	if v := c.FormValue("discountedPrice"); v != "" {
		discounted, err := decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid discounted price")
		}
		input.DiscountedPrice = decimal.NullDecimal{Decimal: discounted, Valid: true}
	}
	if v := c.FormValue("stockCount"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid stock count")
		}
		input.StockCount = stock
	}

	featured, gallery, err := h.saveImages(c)
	if err != nil {
		return err
	}
	input.FeaturedImage = featured
	input.Gallery = gallery

	product, err := h.productService.Create(c.Request().Context(), input)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

// Update godoc
// @Summary Update a product
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product ID")
	}

	var patch service.ProductPatch
	if v := c.FormValue("name"); v != "" {
		patch.Name = &v
	}
	if v := c.FormValue("slug"); v != "" {
		patch.Slug = &v
	}
	if v := c.FormValue("description"); v != "" {
		patch.Description = &v
	}
	if v := c.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		patch.Price = &price
	}
	if values, err := c.FormParams(); err == nil {
		if _, ok := values["discountedPrice"]; ok {
			var discounted decimal.NullDecimal
			if v := c.FormValue("discountedPrice"); v != "" {
				d, err := decimal.NewFromString(v)
				if err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "invalid discounted price")
				}
				discounted = decimal.NullDecimal{Decimal: d, Valid: true}
			}
			patch.DiscountedPrice = &discounted
		}
		if _, ok := values["bestseller"]; ok {
			bestseller := c.FormValue("bestseller") == "true"
			patch.Bestseller = &bestseller
		}
	}
	if v := c.FormValue("stockCount"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid stock count")
		}
		patch.StockCount = &stock
	}

	featured, gallery, err := h.saveImages(c)
	if err != nil {
		return err
	}
	if featured != "" {
		patch.FeaturedImage = &featured
	}
	if len(gallery) > 0 {
		patch.Gallery = gallery
	}

	product, err := h.productService.Update(c.Request().Context(), id, patch)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product updated successfully",
		"product": product,
	})
}

// Delete godoc
// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product ID")
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product deleted",
	})
}

// Get godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product ID")
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"product": product,
	})
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.productService.List(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"products": products,
	})
}

// Search godoc
// @Summary Search products by name
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Router /products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "search query not provided")
	}

	products, err := h.productService.Search(c.Request().Context(), query)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"products": products,
	})
}

// BestSellers godoc
// @Summary List bestseller-flagged products
// @Tags products
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /products/best [get]
func (h *ProductHandler) BestSellers(c echo.Context) error {
	products, err := h.productService.BestSellers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"topseller": products,
	})
}

// TopSelling godoc
// @Summary List products ranked by historical sales
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Result limit (default 3)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.ErrorResponse
// @Router /products/top-selling [get]
func (h *ProductHandler) TopSelling(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	products, err := h.productService.TopSelling(c.Request().Context(), limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"topSelling": products,
	})
}

// saveImages stores the uploaded featured image and gallery files and returns
// their paths. Both are optional.
func (h *ProductHandler) saveImages(c echo.Context) (string, []string, error) {
	var featured string
	var gallery []string

	if file, err := c.FormFile("featuredImage"); err == nil {
		path, err := h.saveUpload(file)
		if err != nil {
			return "", nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to store featured image")
		}
		featured = path
	}

	if form, err := c.MultipartForm(); err == nil {
		files := form.File["gallery"]
		if len(files) > galleryMaxFiles {
			files = files[:galleryMaxFiles]
		}
		for _, file := range files {
			path, err := h.saveUpload(file)
			if err != nil {
				return "", nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to store gallery image")
			}
			gallery = append(gallery, path)
		}
	}

	return featured, gallery, nil
}

func (h *ProductHandler) saveUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
