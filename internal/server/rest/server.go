// Package rest exposes the storefront over HTTP/JSON under /api.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/gogamastore/storefront/internal/logging"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/services"
	"github.com/gogamastore/storefront/internal/server/storage"
)

const shutdownTimeout = 5 * time.Second

type Authenticator interface {
	Register(ctx context.Context, r services.Registration) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListByCategory(ctx context.Context, name string) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type Carts interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error)
}

type Profiles interface {
	GetProfile(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, patch models.ProfilePatch) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Users          Authenticator
	Catalog        Catalog
	Carts          Carts
	Profiles       Profiles
	Store          Pinger
	Images         storage.ImageResolver
	Logger         logging.Logger
	AllowedOrigins []string
}

type HTTPServer struct {
	address string
	deps    Deps
	logger  logging.Logger
	handler http.Handler
}

func NewHTTPServer(address string, d Deps) *HTTPServer {
	if d.Images == nil {
		d.Images = storage.Passthrough{}
	}
	s := &HTTPServer{
		address: address,
		deps:    d,
		logger:  d.Logger.With("module", "http_server"),
	}
	s.handler = s.withCORS(s.routes())
	return s
}

// Handler returns the fully wired handler, CORS included.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

func (s *HTTPServer) withCORS(h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(h)
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.live)
	r.GET("/livez", s.live)
	r.GET("/readyz", s.ready)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)

	protected := api.Group("")
	protected.Use(s.authRequired())

	protected.GET("/products", s.listProducts)
	protected.GET("/products/by-category/:name", s.listByCategory)
	protected.GET("/products/:id", s.getProduct)
	protected.GET("/categories", s.listCategories)

	protected.GET("/cart", s.getCart)
	protected.POST("/cart/add", s.addToCart)
	protected.DELETE("/cart/remove/:product_id", s.removeFromCart)

	protected.GET("/profile", s.getProfile)
	protected.PUT("/profile", s.updateProfile)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
