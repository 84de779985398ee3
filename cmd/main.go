package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/auth"
	"github.com/ukydev/car-rental/internal/booking"
	"github.com/ukydev/car-rental/internal/config"
	"github.com/ukydev/car-rental/internal/db"
	"github.com/ukydev/car-rental/internal/handlers"
	"github.com/ukydev/car-rental/internal/middleware"
	"github.com/ukydev/car-rental/internal/notify"
)

func main() {
	cfg := config.Load()

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.MongoDatabase)
	cars := &db.MongoCarCollection{Collection: database.Collection("cars")}
	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	bookings := &db.MongoBookingCollection{Collection: database.Collection("bookings")}
	locations := &db.MongoLocationCollection{Collection: database.Collection("locations")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	var notifier notify.Publisher
	if cfg.MQTTBroker != "" {
		pub, err := notify.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix)
		if err != nil {
			log.WithError(err).Warn("MQTT broker unreachable, booking events disabled")
		} else {
			defer pub.Close()
			notifier = pub
		}
	}

	engine := booking.NewEngine(cars, users, bookings, booking.Config{
		RestoreAvailabilityOnCancel: cfg.RestoreAvailabilityOnCancel,
		Notifier:                    notifier,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SweepInterval > 0 {
		sweeper := booking.NewSweeper(engine, cfg.SweepInterval)
		go sweeper.Run(ctx)
	}

	authHandler := handlers.NewAuthHandler(authService, users)
	carHandler := handlers.NewCarHandler(cars, engine)
	bookingHandler := handlers.NewBookingHandler(engine)
	adminHandler := handlers.NewAdminHandler(users, cars, bookings)
	locationHandler := handlers.NewLocationHandler(locations)

	authMW := middleware.NewAuthMiddleware(authService)
	authed := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(authMW.RequireAdmin(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.HandleFunc("GET /api/cars", carHandler.List)
	mux.HandleFunc("GET /api/cars/{id}", carHandler.Get)
	mux.Handle("POST /api/cars", admin(carHandler.Create))
	mux.Handle("PUT /api/cars/{id}", admin(carHandler.Update))
	mux.Handle("PATCH /api/cars/{id}/availability", admin(carHandler.SetAvailability))
	mux.Handle("DELETE /api/cars/{id}", admin(carHandler.Delete))

	mux.HandleFunc("GET /api/locations", locationHandler.List)

	mux.Handle("POST /api/bookings", authed(bookingHandler.Create))
	mux.Handle("GET /api/bookings", admin(bookingHandler.ListAll))
	mux.Handle("GET /api/bookings/{id}", authed(bookingHandler.Get))
	mux.Handle("GET /api/bookings/user/{userId}", authed(bookingHandler.ListByUser))
	mux.Handle("PATCH /api/bookings/{id}/status", admin(bookingHandler.UpdateStatus))
	mux.Handle("POST /api/bookings/{id}/cancel", authed(bookingHandler.Cancel))
	mux.Handle("POST /api/bookings/{id}/accept", admin(bookingHandler.Accept))
	mux.Handle("POST /api/bookings/{id}/reject", admin(bookingHandler.Reject))
	mux.Handle("POST /api/bookings/{id}/pay", authed(bookingHandler.Pay))

	mux.Handle("GET /api/dashboard", authed(bookingHandler.Dashboard))

	mux.Handle("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.Handle("DELETE /api/admin/users/{id}", admin(adminHandler.DeleteUser))
	mux.Handle("GET /api/admin/metrics", admin(adminHandler.Metrics))

	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindowSeconds)(mux)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		server.Shutdown(context.Background())
	}()

	log.WithField("port", cfg.Port).Info("HTTP server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server error")
	}
}
