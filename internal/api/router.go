package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/erazemk/omara/internal/bgremove"
	"github.com/erazemk/omara/internal/model"
	"github.com/erazemk/omara/internal/staging"
	"github.com/erazemk/omara/internal/stylist"
	"github.com/erazemk/omara/internal/wardrobe"
)

// Classifier identifies a garment from a photo.
type Classifier interface {
	Classify(ctx context.Context, image []byte, mime string) (model.Classification, error)
}

// Stylist rates an outfit.
type Stylist interface {
	Feedback(ctx context.Context, req stylist.Request) (model.OutfitFeedback, error)
}

// WeatherDescriber describes current conditions at a place.
type WeatherDescriber interface {
	Describe(ctx context.Context, place string) string
}

// Deps are the collaborators the API serves from.
type Deps struct {
	DB         *sql.DB
	JWTSecret  string
	Wardrobe   *wardrobe.Store
	Uploads    *staging.Area
	Classifier Classifier
	Stylist    Stylist
	Remover    bgremove.Remover
	Weather    WeatherDescriber
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(deps Deps) http.Handler {
	if deps.Remover == nil {
		deps.Remover = bgremove.Passthrough{}
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: deps.DB, JWTSecret: deps.JWTSecret}
	itemsHandler := &ItemsHandler{
		Wardrobe:   deps.Wardrobe,
		Uploads:    deps.Uploads,
		Classifier: deps.Classifier,
		Remover:    deps.Remover,
	}
	outfitsHandler := &OutfitsHandler{Wardrobe: deps.Wardrobe, Stylist: deps.Stylist, Weather: deps.Weather}
	weatherHandler := &WeatherHandler{Weather: deps.Weather}

	authMW := AuthMiddleware(deps.JWTSecret, deps.DB)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	mux.Handle("POST /api/items/analyze", authMW(http.HandlerFunc(itemsHandler.Analyze)))
	mux.Handle("GET /api/items/facets", authMW(http.HandlerFunc(itemsHandler.Facets)))
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	mux.Handle("POST /api/outfits/feedback", authMW(http.HandlerFunc(outfitsHandler.Feedback)))
	mux.Handle("GET /api/weather", authMW(http.HandlerFunc(weatherHandler.Get)))

	return mux
}
