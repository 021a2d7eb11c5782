package routes

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Options are the router settings that do not belong to the handlers.
type Options struct {
	CORSOrigins []string
	MediaDir    string // served under /media when set
}

// corsConfig allows only the configured frontends, with credentials. With
// no origins configured any origin is allowed, without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}

// useJSONFieldNames makes validator errors report the json name of a field,
// so binding errors read "items[0].quantity" instead of "Items[0].Quantity".
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	if opts.MediaDir != "" {
		router.Static(media.URLPrefix, opts.MediaDir)
	}

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		// --- Catalog Routes (Public) ---
		api.GET("/categories", h.GetAllCategories)
		api.GET("/categories/:id", h.GetCategory)
		api.GET("/subcategories", h.GetSubCategories)

		api.GET("/products", h.GetProducts)
		api.GET("/products/search", h.SearchProducts)
		api.GET("/products/search-suggestions", h.SearchSuggestions)
		api.GET("/products/:slug", h.GetProduct)

		api.GET("/reviews", h.GetReviews)

		// --- Payment Provider Callback (signature checked) ---
		api.POST("/payment/webhook", h.PaymentWebhook)

		// --- Protected Routes (Login Required) ---
		auth := api.Group("/")
		auth.Use(middleware.AuthMiddleware(h.Tokens))
		{
			auth.GET("/users/me", h.GetMe)
			auth.PUT("/users/me", h.UpdateMe)

			auth.POST("/orders", h.CreateOrder)
			auth.GET("/orders", h.GetOrders)
			auth.GET("/orders/:id", h.GetOrder)

			auth.POST("/payment/create-intent", h.CreatePaymentIntent)

			auth.POST("/reviews", h.CreateReview)
			auth.GET("/reviews/mine", h.GetMyReviews)
			auth.DELETE("/reviews/:id", h.DeleteReview)

			auth.GET("/wishlist", h.GetWishlist)
			auth.POST("/wishlist", h.AddToWishlist)
			auth.GET("/wishlist/check/:product_id", h.CheckWishlist)
			auth.DELETE("/wishlist/:product_id", h.RemoveFromWishlist)

			auth.GET("/addresses", h.GetAddresses)
			auth.POST("/addresses", h.CreateAddress)
			auth.GET("/addresses/:id", h.GetAddress)
			auth.PUT("/addresses/:id", h.UpdateAddress)
			auth.DELETE("/addresses/:id", h.DeleteAddress)

			auth.POST("/uploads", h.UploadFile)

			// --- Admin Routes (Staff Only) ---
			admin := auth.Group("/")
			admin.Use(middleware.AdminMiddleware(h.Store))
			{
				admin.POST("/categories", h.CreateCategory)
				admin.POST("/subcategories", h.CreateSubCategory)

				admin.POST("/products", h.CreateProduct)
				admin.POST("/bulk-upload", h.BulkUploadProducts)
				admin.PUT("/products/:slug", h.UpdateProduct)
				admin.DELETE("/products/:slug", h.DeleteProduct)
				admin.POST("/products/:slug/images", h.AddProductImage)

				admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
			}
		}
	}

	return router
}
