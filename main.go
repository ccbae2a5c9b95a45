package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"flowstate-server/handlers"
	"flowstate-server/middleware"
	"flowstate-server/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment as-is")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		logger.Fatal("MONGODB_URI environment variable is not set")
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "flowstate"
	}
	idpSecret := os.Getenv("IDP_SECRET")
	if idpSecret == "" {
		logger.Fatal("IDP_SECRET environment variable is not set")
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		logger.Fatal("REDIS_ADDR environment variable is not set")
	}
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		redisDB, err = strconv.Atoi(v)
		if err != nil {
			logger.Fatal("invalid REDIS_DB value", zap.Error(err))
		}
	}

	storeTimeout := 5 * time.Second
	if v := os.Getenv("STORE_TIMEOUT"); v != "" {
		storeTimeout, err = time.ParseDuration(v)
		if err != nil {
			logger.Fatal("invalid STORE_TIMEOUT value", zap.Error(err))
		}
	}

	// Moderation policy comes from configuration, never from literals.
	adminIDs := splitList(os.Getenv("ADMIN_IDS"))
	protectedSpotIDs := splitList(os.Getenv("PROTECTED_SPOT_IDS"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoClient, err := services.ConnectMongo(ctx, mongoURI)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	logger.Info("connected to MongoDB")
	db := mongoClient.Database(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}

	spotStore := services.NewMongoSpotStore(db, storeTimeout, logger)
	userStore := services.NewMongoUserStore(db, storeTimeout, logger)
	if _, err := spotStore.EnsureSeedSpots(ctx); err != nil {
		logger.Fatal("failed to seed study spots", zap.Error(err))
	}

	guard := services.NewGuard(adminIDs, protectedSpotIDs)
	sessions := services.NewRedisSessions(redisClient, 24*time.Hour)

	spotService := services.NewSpotService(spotStore, userStore, guard, logger)
	userService := services.NewUserService(userStore, spotStore, logger)
	authService := services.NewAuthService(userStore, sessions, idpSecret, logger)

	spotHandler := handlers.NewSpotHandler(spotService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(authService, userService)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())

	allowedOrigins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/spots", spotHandler.ListSpots).Methods("GET", "OPTIONS")
	api.HandleFunc("/leaderboard", spotHandler.GetLeaderboard).Methods("GET", "OPTIONS")

	// Routes that answer for anonymous callers but see the session if present
	open := api.NewRoute().Subrouter()
	open.Use(middleware.OptionalSessionMiddleware(sessions))
	open.HandleFunc("/whoami", authHandler.WhoAmI).Methods("GET", "OPTIONS")
	open.HandleFunc("/users/{userID}", userHandler.GetUser).Methods("GET", "OPTIONS")

	// Authenticated routes
	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.SessionMiddleware(sessions))
	authed.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	authed.HandleFunc("/spots", spotHandler.CreateSpot).Methods("POST", "OPTIONS")
	authed.HandleFunc("/spots/{spotID}", spotHandler.DeleteSpot).Methods("DELETE", "OPTIONS")
	authed.HandleFunc("/spots/{spotID}/reviews", spotHandler.AddReview).Methods("POST", "OPTIONS")
	authed.HandleFunc("/spots/{spotID}/reviews/{reviewID}", spotHandler.DeleteReview).Methods("DELETE", "OPTIONS")
	authed.HandleFunc("/spots/{spotID}/bookmark", userHandler.ToggleBookmark).Methods("POST", "OPTIONS")
	authed.HandleFunc("/users/me", userHandler.UpdateProfile).Methods("PATCH", "OPTIONS")
	authed.HandleFunc("/users/me/tasks", userHandler.ReplaceTasks).Methods("PUT", "OPTIONS")
	authed.HandleFunc("/users/{userID}/follow", userHandler.Follow).Methods("POST", "OPTIONS")
	authed.HandleFunc("/users/{userID}/follow", userHandler.Unfollow).Methods("DELETE", "OPTIONS")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
