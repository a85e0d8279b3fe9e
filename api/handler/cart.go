package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/api/transport"
	"github.com/fastygo/storefront/pkg/httpcontext"
	cartUC "github.com/fastygo/storefront/usecase/cart"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

type CartHandler struct {
	baseHandler
	cart    *cartUC.UseCase
	catalog *catalogUC.UseCase
}

func NewCartHandler(cart *cartUC.UseCase, catalog *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		baseHandler: newBaseHandler(adapter, logger),
		cart:        cart,
		catalog:     catalog,
	}
}

// @Summary Cart contents
// @Tags cart
// @Router /api/cart [get]
func (h *CartHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.NewCartView(h.cart.Items()))
}

// @Summary Add a catalog product
// @Tags cart
// @Router /api/cart/items [post]
func (h *CartHandler) Add(ctx *fasthttp.RequestCtx) {
	var req transport.CartAddRequest
	if !h.decode(ctx, &req) {
		return
	}
	product, err := h.catalog.Product(req.ProductID)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	items, err := h.cart.Add(stdCtx, product)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCartView(items))
}

// @Summary Set a line quantity
// @Tags cart
// @Router /api/cart/items/{id} [put]
func (h *CartHandler) UpdateQuantity(ctx *fasthttp.RequestCtx) {
	id, err := idParam(ctx)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	var req transport.CartQuantityRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	items, err := h.cart.UpdateQuantity(stdCtx, id, req.Quantity)
	if err != nil {
		h.respondError(ctx, err, transport.NewCartView(items))
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCartView(items))
}

// @Summary Remove a line
// @Tags cart
// @Router /api/cart/items/{id} [delete]
func (h *CartHandler) Remove(ctx *fasthttp.RequestCtx) {
	id, err := idParam(ctx)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	items, err := h.cart.Remove(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCartView(items))
}

// @Summary Empty the cart
// @Tags cart
// @Router /api/cart [delete]
func (h *CartHandler) Clear(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()
	items, err := h.cart.Clear(stdCtx)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewCartView(items))
}
