package controllers

import (
	"net/http"

	"github.com/ruizhu/shopapi/app/services"
	"github.com/ruizhu/shopapi/pkg/ctx"
)

// maxUpload bounds the multipart form held in memory; larger parts spill
// to temp files.
const maxUpload = 8 << 20

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.products.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	p, err := pc.products.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.products.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(products)
}

// Update replaces the whole product.
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.products.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	if err := pc.products.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]string{"message": "Product deleted"})
}

// UploadImage accepts a multipart "file" field and stores it as the
// product image.
func (pc *ProductController) UploadImage(c *ctx.Context) {
	id, ok := c.ParamID("id")
	if !ok {
		return
	}
	file, header, err := c.FormFile("file", maxUpload)
	if err != nil {
		c.Error(http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	p, err := pc.products.AttachImage(c.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(p)
}
