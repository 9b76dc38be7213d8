package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureCategoryIndexes(db); err != nil {
		log.Printf("category index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("review index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	secret := config.AppEnv.JWTSecret
	authenticate := middleware.Authenticate(db, secret)
	adminOnly := middleware.RequireAdmin()

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"health": "healthy"})
	})

	users := r.Group("/users")
	{
		users.POST("/register", handlers.Register(db))
		users.POST("/login", handlers.Login(db, secret, config.AppEnv.TokenTTL))
		users.GET("/profile", authenticate, handlers.GetProfile(db))
		users.PUT("/profile", authenticate, handlers.UpdateProfile(db))
		users.GET("", authenticate, adminOnly, handlers.GetUsers(db))
		users.GET("/:id", authenticate, adminOnly, handlers.GetUserByID(db))
		users.PUT("/:id", authenticate, adminOnly, handlers.UpdateUserByID(db))
		users.DELETE("/:id", authenticate, adminOnly, handlers.DeleteUser(db))
	}

	products := r.Group("/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))
		products.POST("", authenticate, adminOnly, handlers.CreateProduct(db))
		products.PUT("/:id", authenticate, adminOnly, handlers.UpdateProduct(db))
		products.DELETE("/:id", authenticate, adminOnly, handlers.DeleteProduct(db))
		products.POST("/:id/reviews", authenticate, handlers.AddReview(db))
	}

	reviews := r.Group("/reviews")
	{
		reviews.GET("/:productId", handlers.GetProductReviews(db))
		reviews.DELETE("/:id", authenticate, handlers.DeleteReview(db))
	}

	categories := r.Group("/categories")
	{
		categories.GET("", handlers.GetCategories(db))
		categories.POST("", authenticate, adminOnly, handlers.CreateCategory(db))
		categories.PUT("/:id", authenticate, adminOnly, handlers.UpdateCategory(db))
		categories.DELETE("/:id", authenticate, adminOnly, handlers.DeleteCategory(db))
	}

	cart := r.Group("/cart")
	cart.Use(authenticate)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("/add", handlers.AddItem(db))
		cart.PUT("/update", handlers.UpdateItem(db))
		cart.DELETE("/remove", handlers.RemoveItem(db))
		cart.DELETE("/clear", handlers.ClearCart(db))
	}

	orders := r.Group("/orders")
	orders.Use(authenticate)
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/mine", handlers.GetMyOrders(db))
		orders.GET("", adminOnly, handlers.GetAllOrders(db))
		orders.GET("/:id", handlers.GetOrderByID(db))
		orders.PUT("/:id", adminOnly, handlers.UpdateOrderStatus(db))
	}

	contact := r.Group("/contact")
	{
		contact.POST("", handlers.SendMessage(db))
		contact.GET("", authenticate, adminOnly, handlers.GetMessages(db))
	}

	r.Run(":" + config.AppEnv.Port)
}
