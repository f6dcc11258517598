package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appMiddleware "github.com/campuscart/backend/internal/middleware"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/services"
)

// Deps carries everything the HTTP layer talks to.
type Deps struct {
	Products      *services.ProductService
	Users         *services.UserService
	Accounts      *services.AccountService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Bookmarks     *services.BookmarkService
	Captcha       services.CaptchaVerifier

	JWTSecret      string
	JWTExpiration  time.Duration
	MaxUploadBytes int64

	// UploadDir is served under UploadURLPrefix when set, for the local
	// storage driver.
	UploadDir       string
	UploadURLPrefix string
}

func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Users, d.Captcha, d.JWTSecret, d.JWTExpiration)
	productHandler := NewProductHandler(d.Products, d.MaxUploadBytes)
	userHandler := NewUserHandler(d.Users, d.Accounts, d.MaxUploadBytes)
	messageHandler := NewMessageHandler(d.Messages)
	notificationHandler := NewNotificationHandler(d.Notifications)
	bookmarkHandler := NewBookmarkHandler(d.Bookmarks)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if d.UploadDir != "" && d.UploadURLPrefix != "" {
		prefix := "/" + strings.Trim(d.UploadURLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(d.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/user/postUserRecord", authHandler.Register)
		r.Post("/user/login", authHandler.Login)
		r.Post("/admin/login", authHandler.AdminLogin)
		r.Post("/auth/google", authHandler.Google)

		// Signed-in users and admins
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(d.JWTSecret))

			r.Route("/product", func(r chi.Router) {
				r.Post("/postproduct", productHandler.Create)
				r.Get("/getAllProducts/{username}", productHandler.ListAll)
				r.Get("/getFilteredProducts/{username}", productHandler.ListFiltered)
				r.Get("/getProductsByUser/{username}", productHandler.ListBySeller)
				r.Get("/getProductByCode/{code}", productHandler.Get)
				r.Get("/getSellerInfo/{code}", productHandler.Seller)
				r.Put("/putProductDetails/{code}", productHandler.Update)
				r.Delete("/deleteProduct/{code}", productHandler.Delete)

				r.Group(func(r chi.Router) {
					r.Use(appMiddleware.RequireAdmin)
					r.Get("/pendingApproval", productHandler.ReviewQueue)
					r.Post("/approve", productHandler.Approve)
					r.Post("/reject", productHandler.Reject)
				})
			})

			r.Route("/user", func(r chi.Router) {
				r.Get("/getUserRecord/{username}", userHandler.Get(models.RoleUser))
				r.Put("/putUserRecord/{username}", userHandler.Update(models.RoleUser))
				r.Put("/changePassword/{username}", userHandler.ChangePassword(models.RoleUser))
				r.Delete("/deleteUserRecord/{username}", userHandler.Delete(models.RoleUser))
				r.Post("/uploadProfilePhoto/{username}", userHandler.UploadPhoto(models.RoleUser))
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", messageHandler.Send)
				r.Get("/conversation/{u1}/{u2}", messageHandler.Conversation)
				r.Get("/conversation/{u1}/{u2}/product/{code}", messageHandler.Conversation)
				r.Put("/{id}/read", messageHandler.MarkRead)
				r.Get("/unread/{username}", messageHandler.Unread)
				r.Get("/unread/count/{username}", messageHandler.UnreadCount)
				r.Get("/conversations/{username}", messageHandler.Conversations)
				r.Get("/partners/{username}", messageHandler.Partners)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/user/{username}", notificationHandler.List)
				r.Get("/user/{username}/unread-count", notificationHandler.UnreadCount)
				r.Put("/user/{username}/read-all", notificationHandler.MarkAllRead)
				r.Put("/{id}/read", notificationHandler.MarkRead)
			})

			r.Route("/bookmarks", func(r chi.Router) {
				r.Get("/", bookmarkHandler.List)
				r.Post("/{code}", bookmarkHandler.Add)
				r.Delete("/{code}", bookmarkHandler.Remove)
			})

			// Admin console
			r.Route("/admin", func(r chi.Router) {
				r.Use(appMiddleware.RequireAdmin)

				r.Post("/addAdmin", userHandler.AddAdmin)
				r.Get("/getAllAdmins", userHandler.List(models.RoleAdmin))
				r.Get("/getAdminRecord/{username}", userHandler.Get(models.RoleAdmin))
				r.Put("/putAdminRecord/{username}", userHandler.Update(models.RoleAdmin))
				r.Delete("/deleteAdminRecord/{username}", userHandler.Delete(models.RoleAdmin))
				r.Put("/changePassword/{username}", userHandler.ChangePassword(models.RoleAdmin))
				r.Post("/uploadProfilePhoto/{username}", userHandler.UploadPhoto(models.RoleAdmin))

				r.Get("/products", productHandler.ReviewQueue)
				r.Delete("/delete-products", productHandler.BulkDelete)

				r.Get("/users", userHandler.List(models.RoleUser))
				r.Get("/users/{username}", userHandler.Get(models.RoleUser))
				r.Put("/users/{username}", userHandler.Update(models.RoleUser))
				r.Delete("/users/{username}", userHandler.Delete(models.RoleUser))
			})
		})
	})

	return r
}
