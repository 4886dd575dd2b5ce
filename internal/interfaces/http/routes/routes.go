package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/coffee-marketplace/internal/config"
	"github.com/your-org/coffee-marketplace/internal/domain/user"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/handlers"
	"github.com/your-org/coffee-marketplace/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler wired into the router.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Profile    *handlers.UserProfileHandler
	Address    *handlers.UserAddressHandler
	Balance    *handlers.BalanceHandler
	Product    *handlers.ProductHandler
	Review     *handlers.ReviewHandler
	Cart       *handlers.CartHandler
	Checkout   *handlers.CheckoutHandler
	Order      *handlers.OrderHandler
	Invoice    *handlers.InvoiceHandler
	Voucher    *handlers.VoucherHandler
	Wishlist   *handlers.WishlistHandler
	Analytics  *handlers.AnalyticsHandler
	Admin      *handlers.UserAdminHandler
	RoleReader middleware.RoleReader
}

// Setup registers all API routes on the given router group.
func Setup(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	setupAuthRoutes(rg, h, cfg)
	setupCatalogRoutes(rg, h, cfg)
	setupAccountRoutes(rg, h, cfg)
	setupShoppingRoutes(rg, h, cfg)
	setupSellerRoutes(rg, h, cfg)
	setupAdminRoutes(rg, h, cfg)
}

func setupAuthRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", h.Auth.Logout)
			protected.GET("/me", h.Auth.GetCurrentUser)
			protected.GET("/validate", h.Auth.ValidateToken)
		}
	}
}

func setupCatalogRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/categories", h.Product.GetCategories)
		products.GET("/slug/:slug", h.Product.GetProductBySlug)
		products.GET("/:id", h.Product.GetProduct)
		products.GET("/:id/vouchers", h.Voucher.GetProductVouchers)
		products.GET("/:id/reviews", h.Review.GetProductReviews)
	}
}

func setupAccountRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", h.Profile.GetProfile)
		users.PUT("/profile", h.Profile.UpdateProfile)
		users.PUT("/password", h.Profile.ChangePassword)

		users.GET("/addresses", h.Address.GetAddresses)
		users.POST("/addresses", h.Address.CreateAddress)
		users.GET("/addresses/:id", h.Address.GetAddress)
		users.PUT("/addresses/:id", h.Address.UpdateAddress)
		users.DELETE("/addresses/:id", h.Address.DeleteAddress)
		users.POST("/addresses/:id/default", h.Address.SetDefaultAddress)
	}

	balance := rg.Group("/balance")
	balance.Use(middleware.AuthMiddleware(cfg))
	{
		balance.GET("", h.Balance.GetBalance)
		balance.POST("/top-up", h.Balance.TopUp)
		balance.GET("/transactions", h.Balance.GetTransactions)
	}
}

func setupShoppingRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.GET("/count", h.Cart.GetCartCount)
		cart.GET("/selected", h.Cart.GetSelectedItems)
		cart.POST("/items", h.Cart.AddToCart)
		cart.PUT("/items/:id", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:id", h.Cart.RemoveCartItem)
		cart.POST("/items/:id/toggle", h.Cart.ToggleItemSelection)
		cart.POST("/select-all", h.Cart.SelectAllItems)
		cart.POST("/clear-selections", h.Cart.ClearSelections)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("/summary", h.Checkout.GetSummary)
		checkout.GET("/promo", h.Checkout.GetAppliedPromo)
		checkout.POST("/promo", h.Checkout.ApplyPromo)
		checkout.DELETE("/promo", h.Checkout.RemovePromo)
		checkout.POST("/place-order", h.Checkout.PlaceOrder)
		checkout.GET("/confirmation/:orderNumber", h.Checkout.GetConfirmation)
	}

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", h.Order.GetUserOrders)
		orders.GET("/number/:orderNumber", h.Order.GetOrderByNumber)
		orders.GET("/:id", h.Order.GetOrder)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
		orders.GET("/:id/invoice", h.Invoice.DownloadInvoice)
	}

	reviews := rg.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware(cfg))
	{
		reviews.POST("", h.Review.CreateReview)
		reviews.DELETE("/:id", h.Review.DeleteReview)
	}

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(cfg))
	{
		wishlist.GET("", h.Wishlist.GetWishlist)
		wishlist.DELETE("", h.Wishlist.ClearWishlist)
		wishlist.GET("/count", h.Wishlist.GetWishlistCount)
		wishlist.POST("/items", h.Wishlist.AddToWishlist)
		wishlist.GET("/items/:productID", h.Wishlist.IsInWishlist)
		wishlist.DELETE("/items/:productID", h.Wishlist.RemoveFromWishlist)
		wishlist.POST("/items/:productID/move-to-cart", h.Wishlist.MoveToCart)
	}
}

func setupSellerRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	// The role guard handles missing credentials itself; optional auth only
	// populates the context so unauthenticated callers reach the guard and
	// get the login redirect instead of a bare 401.
	seller := rg.Group("/seller")
	seller.Use(middleware.OptionalAuthMiddleware(cfg))
	seller.Use(middleware.RequireRoles(cfg, h.RoleReader, user.RoleSeller, user.RoleAdmin))
	{
		seller.GET("/orders", h.Order.GetVendorOrders)
		seller.GET("/analytics", h.Analytics.GetSellerStats)

		seller.POST("/products", h.Product.CreateProduct)
		seller.PUT("/products/:id", h.Product.UpdateProduct)
		seller.DELETE("/products/:id", h.Product.DeleteProduct)

		seller.GET("/vouchers", h.Voucher.GetVendorVouchers)
		seller.POST("/vouchers", h.Voucher.CreateVoucher)
		seller.PUT("/vouchers/:id", h.Voucher.UpdateVoucher)
		seller.DELETE("/vouchers/:id", h.Voucher.DeleteVoucher)
	}
}

func setupAdminRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.OptionalAuthMiddleware(cfg))
	admin.Use(middleware.RequireRoles(cfg, h.RoleReader, user.RoleAdmin))
	{
		admin.GET("/orders", h.Order.ListOrders)
		admin.PUT("/orders/:id/status", h.Order.UpdateOrderStatus)

		admin.GET("/users", h.Admin.GetUsers)
		admin.GET("/users/export", h.Admin.ExportUsers)
		admin.GET("/users/:id", h.Admin.GetUser)
		admin.PUT("/users/:id/status", h.Admin.UpdateUserStatus)
		admin.PUT("/users/:id/role", h.Admin.UpdateUserRole)

		admin.GET("/analytics/dashboard", h.Analytics.GetDashboardStats)
	}
}
