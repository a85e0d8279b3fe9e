package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storefront/pkg/httpcontext"
	catalogUC "github.com/fastygo/storefront/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewCatalogHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Cached products
// @Tags catalog
// @Router /api/products [get]
func (h *CatalogHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.uc.Snapshot())
}

// @Summary Refetch products
// @Tags catalog
// @Router /api/products/refresh [post]
func (h *CatalogHandler) Refresh(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.uc.Refresh(stdCtx)
	if err != nil {
		h.respondError(ctx, err, snapshot)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snapshot)
}

// @Summary One cached product
// @Tags catalog
// @Router /api/products/{id} [get]
func (h *CatalogHandler) Get(ctx *fasthttp.RequestCtx) {
	id, err := idParam(ctx)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	product, err := h.uc.Product(id)
	if err != nil {
		h.respondError(ctx, err, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, product)
}
