package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"uniform_shop/internal/apperr"
	"uniform_shop/internal/cart"
	"uniform_shop/internal/config"
	"uniform_shop/internal/inventory"
	"uniform_shop/internal/middleware"
	"uniform_shop/internal/model"
	"uniform_shop/internal/order"
	rediskey "uniform_shop/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionHeader = "X-Session-ID"

// Setup registers all HTTP routes. rdb may be nil (tests); the redis-backed
// extras — rate limiting, stock display cache, idempotent replay — simply
// switch off.
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, carts *cart.Store, engine *order.Engine, cfg config.AppConfig) {
	stock := inventory.NewStore(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Storefront
	r.GET("/api/stock/:category/:product_id", getStock(stock, rdb, cfg))
	r.GET("/api/schools", listSchools(db))

	// Cart
	r.POST("/api/cart/lines", addCartLine(stock, carts))
	r.GET("/api/cart", viewCart(carts))
	r.POST("/api/cart/lines/adjust", adjustCartLine(carts))
	r.DELETE("/api/cart/lines", removeCartLine(carts))

	// Checkout
	checkout := []gin.HandlerFunc{}
	if rdb != nil {
		checkout = append(checkout, middleware.RedisRateLimit(rdb, cfg.CheckoutRateLimit, cfg.CheckoutRateWindow))
	}
	checkout = append(checkout, placeOrder(engine, carts, rdb, cfg))
	r.POST("/api/checkout", checkout...)
	r.GET("/api/orders/:order_no", getOrder(db))

	// Admin (restock/seed helpers behind a token)
	r.POST("/api/admin/schools", requireAdmin(cfg.AdminToken), createSchool(db))
	r.POST("/api/admin/stock", requireAdmin(cfg.AdminToken), createStockItem(db))
	if rdb != nil {
		r.POST("/api/admin/stock/preload/:category/:product_id", requireAdmin(cfg.AdminToken), preloadStock(stock, rdb, cfg.StockCacheTTL))
	}
}

// respondError maps the error taxonomy onto HTTP statuses. Insufficient
// stock additionally carries the live available count so the UI can show a
// corrective message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	var ae *apperr.Error
	if errors.As(err, &ae) {
		kind = ae.Kind.String()
		switch ae.Kind {
		case apperr.KindValidation:
			status = http.StatusBadRequest
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindInsufficientStock:
			status = http.StatusConflict
		case apperr.KindPersistence:
			status = http.StatusInternalServerError
		}
	}

	body := gin.H{"code": status, "error_kind": kind, "msg": err.Error()}
	if ae != nil && ae.Kind == apperr.KindInsufficientStock {
		body["available"] = ae.Available
	}
	c.JSON(status, body)
}

// sessionID pulls the session header; the cart is scoped to it.
func sessionID(c *gin.Context) (string, bool) {
	sid := c.GetHeader(sessionHeader)
	if sid == "" {
		respondError(c, apperr.Validationf("%s header is required", sessionHeader))
		return "", false
	}
	return sid, true
}

func parseStockParams(c *gin.Context) (model.Category, uint, bool) {
	cat, err := model.ParseCategory(c.Param("category"))
	if err != nil {
		respondError(c, apperr.Validationf("%v", err))
		return "", 0, false
	}
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		respondError(c, apperr.Validationf("invalid product id"))
		return "", 0, false
	}
	return cat, uint(id), true
}

// getStock serves the storefront quantity display, preferring the redis
// cache and falling back to (and refreshing from) the live row.
func getStock(stock *inventory.Store, rdb *rd.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, id, ok := parseStockParams(c)
		if !ok {
			return
		}
		size := c.Query("size")
		if size == "" {
			respondError(c, apperr.Validationf("size query parameter is required"))
			return
		}

		ctx := c.Request.Context()
		if rdb != nil {
			if qty, found, err := rediskey.CachedStock(ctx, rdb, cat, id, size); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"quantity": qty, "cached": true}})
				return
			}
		}

		item, err := stock.Find(ctx, cat, id, size)
		if err != nil {
			respondError(c, err)
			return
		}
		if rdb != nil {
			_ = rediskey.CacheStock(ctx, rdb, item, cfg.StockCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"cached":     false,
		}})
	}
}

func listSchools(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.School
		if err := db.WithContext(c.Request.Context()).Order("name").Find(&list).Error; err != nil {
			respondError(c, apperr.Persistence(err, "school listing failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": list})
	}
}

// addCartLine validates the inbound line, checks availability including the
// quantity already held in the cart, then merges it into the session cart.
// The stock check here is advisory; checkout re-validates authoritatively.
func addCartLine(stock *inventory.Store, carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}

		var req struct {
			Category   string `json:"category" binding:"required"`
			ProductID  uint   `json:"product_id" binding:"required,min=1"`
			Name       string `json:"name" binding:"required"`
			UnitPrice  int64  `json:"unit_price" binding:"required,min=1"`
			Size       string `json:"size" binding:"required"`
			Quantity   int    `json:"quantity" binding:"required,min=1"`
			SchoolID   uint   `json:"school_id"`
			SchoolName string `json:"school_name"`
			Color      string `json:"color"`
			Quality    string `json:"quality"`
			ImageURL   string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}
		cat, err := model.ParseCategory(req.Category)
		if err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}

		key := cart.Key{Category: cat, ProductID: req.ProductID, Size: req.Size}
		sessionCart := carts.Get(sid)
		already := sessionCart.QuantityOf(key)

		if _, err := stock.CheckAvailability(c.Request.Context(), cat, req.ProductID, req.Size, req.Quantity, already); err != nil {
			respondError(c, err)
			return
		}

		merged := sessionCart.AddOrMerge(cart.Line{
			Key:        key,
			Name:       req.Name,
			UnitPrice:  req.UnitPrice,
			Quantity:   req.Quantity,
			SchoolID:   req.SchoolID,
			SchoolName: req.SchoolName,
			Color:      req.Color,
			Quality:    req.Quality,
			ImageURL:   req.ImageURL,
		})

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"key":             key,
			"merged_quantity": merged,
			"cart_total":      sessionCart.Total(),
		}})
	}
}

// viewCart returns the ordered lines plus the running total, keyed for
// idempotent re-submission.
func viewCart(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}
		sessionCart := carts.Get(sid)
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"lines": sessionCart.Lines(),
			"total": sessionCart.Total(),
		}})
	}
}

func bindKey(c *gin.Context) (cart.Key, int, bool) {
	var req struct {
		Category  string `json:"category" binding:"required"`
		ProductID uint   `json:"product_id" binding:"required,min=1"`
		Size      string `json:"size" binding:"required"`
		Delta     int    `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("%v", err))
		return cart.Key{}, 0, false
	}
	cat, err := model.ParseCategory(req.Category)
	if err != nil {
		respondError(c, apperr.Validationf("%v", err))
		return cart.Key{}, 0, false
	}
	return cart.Key{Category: cat, ProductID: req.ProductID, Size: req.Size}, req.Delta, true
}

// adjustCartLine steps a line's quantity by one unit in either direction.
func adjustCartLine(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}
		key, delta, ok := bindKey(c)
		if !ok {
			return
		}
		if delta != 1 && delta != -1 {
			respondError(c, apperr.Validationf("delta must be 1 or -1"))
			return
		}

		sessionCart := carts.Get(sid)
		qty, found := sessionCart.AdjustQuantity(key, delta)
		if !found {
			respondError(c, apperr.NotFoundf("cart line not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"quantity":   qty,
			"cart_total": sessionCart.Total(),
		}})
	}
}

// removeCartLine deletes a line; removing an absent line succeeds.
func removeCartLine(carts *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := sessionID(c)
		if !ok {
			return
		}
		key, _, ok := bindKey(c)
		if !ok {
			return
		}
		sessionCart := carts.Get(sid)
		sessionCart.Remove(key)
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{
			"cart_total": sessionCart.Total(),
		}})
	}
}

// confirmation is the outbound order confirmation payload.
func confirmation(ord *model.Order) gin.H {
	return gin.H{
		"order_no":        ord.OrderNo,
		"category":        ord.Category,
		"product_id":      ord.ProductID,
		"size":            ord.Size,
		"color":           ord.Color,
		"quantity":        ord.Quantity,
		"base_price":      ord.BasePrice,
		"delivery_fee":    ord.DeliveryFee,
		"total_price":     ord.TotalPrice,
		"delivery_option": ord.DeliveryOption,
		"school_name":     ord.SchoolName,
		"status":          ord.Status,
		"created_at":      ord.CreatedAt,
	}
}

// placeOrder drives the placement engine and, on success, consumes the
// matching cart line and invalidates the stock display cache. With an
// Idempotency-Key header, a repeated submission replays the stored
// confirmation instead of placing twice.
func placeOrder(engine *order.Engine, carts *cart.Store, rdb *rd.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID         int64  `json:"user_id" binding:"required,min=1"`
			Category       string `json:"category" binding:"required"`
			ProductID      uint   `json:"product_id" binding:"required,min=1"`
			Quantity       int    `json:"quantity" binding:"required,min=1"`
			DeliveryOption string `json:"delivery_option" binding:"required"`
			SchoolID       uint   `json:"school_id" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}
		cat, err := model.ParseCategory(req.Category)
		if err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}

		ctx := c.Request.Context()
		idemKey := c.GetHeader("Idempotency-Key")
		if rdb != nil && idemKey != "" {
			if payload, found, err := rediskey.CheckoutReplay(ctx, rdb, req.UserID, idemKey); err == nil && found {
				var stored gin.H
				if json.Unmarshal([]byte(payload), &stored) == nil {
					c.JSON(http.StatusOK, gin.H{"code": 0, "data": stored, "replayed": true})
					return
				}
			}
		}

		ord, err := engine.Place(ctx, order.PlaceRequest{
			UserID:         req.UserID,
			Category:       cat,
			ProductID:      req.ProductID,
			Quantity:       req.Quantity,
			DeliveryOption: req.DeliveryOption,
			SchoolID:       req.SchoolID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		body := confirmation(ord)

		// Checkout consumes the line it fulfilled, if the session holds one.
		if sid := c.GetHeader(sessionHeader); sid != "" {
			carts.Get(sid).Remove(cart.Key{Category: ord.Category, ProductID: ord.ProductID, Size: ord.Size})
		}
		if rdb != nil {
			_ = rediskey.InvalidateStock(ctx, rdb, ord.Category, ord.ProductID, ord.Size)
			if idemKey != "" {
				if b, err := json.Marshal(body); err == nil {
					_, _ = rediskey.ClaimCheckout(ctx, rdb, req.UserID, idemKey, string(b), cfg.IdempotencyTTL)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": body})
	}
}

// getOrder looks a confirmation up by order number.
func getOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderNo := c.Param("order_no")
		var ord model.Order
		err := db.WithContext(c.Request.Context()).Where("order_no = ?", orderNo).First(&ord).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apperr.NotFoundf("order %s not found", orderNo))
			return
		}
		if err != nil {
			respondError(c, apperr.Persistence(err, "order lookup failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": confirmation(&ord)})
	}
}

func requireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Admin-Token") != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": 401, "msg": "invalid admin token"})
			return
		}
		c.Next()
	}
}

func createSchool(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}
		s := &model.School{Name: req.Name}
		if err := db.WithContext(c.Request.Context()).Create(s).Error; err != nil {
			respondError(c, apperr.Persistence(err, "school create failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": s})
	}
}

func createStockItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Category  string `json:"category" binding:"required"`
			Name      string `json:"name" binding:"required"`
			SchoolID  uint   `json:"school_id"`
			Size      string `json:"size" binding:"required"`
			Color     string `json:"color"`
			Quality   string `json:"quality"`
			ImageURL  string `json:"image_url"`
			Quantity  int64  `json:"quantity" binding:"required,min=1"`
			UnitPrice int64  `json:"unit_price" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}
		cat, err := model.ParseCategory(req.Category)
		if err != nil {
			respondError(c, apperr.Validationf("%v", err))
			return
		}
		item := &model.StockItem{
			Category:  cat,
			Name:      req.Name,
			SchoolID:  req.SchoolID,
			Size:      req.Size,
			Color:     req.Color,
			Quality:   req.Quality,
			ImageURL:  req.ImageURL,
			Quantity:  req.Quantity,
			UnitPrice: req.UnitPrice,
		}
		if err := db.WithContext(c.Request.Context()).Create(item).Error; err != nil {
			respondError(c, apperr.Persistence(err, "stock create failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": item})
	}
}

// preloadStock warms the display cache from the live row.
func preloadStock(stock *inventory.Store, rdb *rd.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, id, ok := parseStockParams(c)
		if !ok {
			return
		}
		size := c.Query("size")
		if size == "" {
			respondError(c, apperr.Validationf("size query parameter is required"))
			return
		}
		item, err := stock.Find(c.Request.Context(), cat, id, size)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := rediskey.CacheStock(c.Request.Context(), rdb, item, ttl); err != nil {
			respondError(c, apperr.Persistence(err, "stock preload failed"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "preloaded"})
	}
}
