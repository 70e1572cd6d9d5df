package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-admin/internal/cache"
	"product-admin/internal/cleanup"
	"product-admin/internal/models"
	"product-admin/internal/repository"
)

const (
	listCacheKey    = "products:list"
	listCachePrefix = "products:"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgNeedTwoImages    = "Es necesario 2 imagenes"
	msgMissingData      = "Faltan datos"
	msgDuplicateSlug    = "El producto ya existe con ese slug"
	msgCreateFailed     = "Error al crear el producto revisar log del servidor"
	msgInvalidID        = "El id del producto no es valido"
	msgNotFound         = "Producto no encontrado"
	msgUpdateFailed     = "Error al actualizar el producto revisar consola servidor"
	msgListFailed       = "Error al obtener los productos"
)

// ProductStore es la colección de productos que usa el handler
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, product *models.Product) (*models.Product, error)
}

// ImageCleaner recibe las imágenes huérfanas para borrarlas del media host
type ImageCleaner interface {
	Enqueue(imageURL string) bool
	DeadLetters() []cleanup.FailedJob
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProductHandler struct {
	store    ProductStore
	cleaner  ImageCleaner
	cache    *cache.Cache
	hostName string
	// listGeneration cambia con cada escritura; un listado leído antes no se guarda en caché
	listGeneration atomic.Uint64
}

// NewProductHandler recibe la configuración explícita; hostName se usa para calificar imágenes
func NewProductHandler(store ProductStore, cleaner ImageCleaner, listCache *cache.Cache, hostName string) *ProductHandler {
	return &ProductHandler{
		store:    store,
		cleaner:  cleaner,
		cache:    listCache,
		hostName: hostName,
	}
}

// Dispatch enruta /api/admin/products según el método HTTP
func (h *ProductHandler) Dispatch(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodGet:
		h.ListProducts(c)
	case http.MethodPost:
		h.CreateProduct(c)
	case http.MethodPut:
		h.UpdateProduct(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, MessageResponse{Message: msgMethodNotAllowed})
	}
}

// GET /api/admin/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	logger := log.WithField("component", "handlers")

	var products []models.Product
	if h.cache != nil {
		found, err := h.cache.Unmarshal(ctx, listCacheKey, &products)
		if err != nil {
			logger.WithField("error", err).Warn("product list cache read failed")
		}
		if found && err == nil {
			c.JSON(http.StatusOK, products)
			return
		}
	}

	generation := h.listGeneration.Load()
	products, err := h.store.List(ctx)
	if err != nil {
		logger.WithField("error", err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, MessageResponse{Message: msgListFailed})
		return
	}

	qualifyImages(products, h.hostName)
	h.fillListCache(ctx, generation, products)

	c.JSON(http.StatusOK, products)
}

// fillListCache guarda el listado solo si ninguna escritura ocurrió desde que se leyó
func (h *ProductHandler) fillListCache(ctx context.Context, generation uint64, products []models.Product) {
	if h.cache == nil || h.listGeneration.Load() != generation {
		return
	}
	logger := log.WithField("component", "handlers")
	if err := h.cache.Marshal(ctx, listCacheKey, products); err != nil {
		logger.WithField("error", err).Warn("product list cache write failed")
		return
	}
	// Una escritura entre la verificación y el Marshal pudo invalidar antes de tiempo
	if h.listGeneration.Load() != generation {
		h.clearListCache(ctx)
	}
}

// POST /api/admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		// Un body inválido se trata como vacío
		log.WithFields(log.Fields{"component": "handlers", "error": err}).Debug("create body could not be decoded")
		product = models.Product{}
	}

	if !product.HasEnoughImages() {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgNeedTwoImages})
		return
	}

	if product.Title == "" || product.Description == "" || len(product.Images) == 0 {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgMissingData})
		return
	}

	if err := h.store.Create(c.Request.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			c.JSON(http.StatusBadRequest, MessageResponse{Message: msgDuplicateSlug})
			return
		}
		log.WithFields(log.Fields{
			"component": "handlers",
			"slug":      product.Slug,
			"error":     err,
		}).Error("failed to create product")
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgCreateFailed})
		return
	}

	h.invalidateList(c.Request.Context())
	c.JSON(http.StatusCreated, product)
}

type updateRequest struct {
	ID     string   `json:"_id"`
	Images []string `json:"images"`
}

// PUT /api/admin/products
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || !primitive.IsValidObjectID(req.ID) {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgInvalidID})
		return
	}

	if len(req.Images) < models.MinImages {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgNeedTwoImages})
		return
	}

	logger := log.WithFields(log.Fields{"component": "handlers", "product_id": req.ID})

	var product models.Product
	if err := c.ShouldBindBodyWith(&product, binding.JSON); err != nil {
		logger.WithField("error", err).Error("update body could not be decoded")
		c.JSON(http.StatusBadRequest, MessageResponse{Message: msgUpdateFailed})
		return
	}

	ctx := c.Request.Context()

	current, err := h.store.FindByID(ctx, req.ID)
	if err != nil {
		h.updateError(c, logger, err)
		return
	}

	updated, err := h.store.Update(ctx, req.ID, &product)
	if err != nil {
		h.updateError(c, logger, err)
		return
	}

	for _, image := range orphanedImages(current.Images, req.Images) {
		if !h.cleaner.Enqueue(image) {
			logger.WithField("image", image).Warn("orphaned image was not queued for deletion")
		}
	}

	h.invalidateList(ctx)
	c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) updateError(c *gin.Context, logger *log.Entry, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, MessageResponse{Message: msgNotFound})
		return
	}
	logger.WithField("error", err).Error("failed to update product")
	c.JSON(http.StatusBadRequest, MessageResponse{Message: msgUpdateFailed})
}

// GET /api/admin/images/failed
func (h *ProductHandler) FailedImageDeletions(c *gin.Context) {
	c.JSON(http.StatusOK, h.cleaner.DeadLetters())
}

func (h *ProductHandler) invalidateList(ctx context.Context) {
	h.listGeneration.Add(1)
	h.clearListCache(ctx)
}

func (h *ProductHandler) clearListCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, listCachePrefix); err != nil {
		log.WithFields(log.Fields{"component": "handlers", "error": err}).Warn("product list cache invalidation failed")
	}
}
