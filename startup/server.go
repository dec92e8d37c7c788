package startup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AilenFranco43/Booked/cache"
	"github.com/AilenFranco43/Booked/casbinAuthorization"
	"github.com/AilenFranco43/Booked/domain"
	"github.com/AilenFranco43/Booked/handlers"
	application "github.com/AilenFranco43/Booked/service"
	"github.com/AilenFranco43/Booked/startup/config"
	"github.com/AilenFranco43/Booked/store"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	config *config.Config
	logger *logrus.Logger
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
		logger: initLogger(config.LogLevel, config.LogFilePath),
	}
}

func (server *Server) initTracer() (*sdktrace.TracerProvider, trace.Tracer) {
	var exp sdktrace.SpanExporter
	if server.config.JaegerAddress != "" {
		jaegerExp, err := newExporter(server.config.JaegerAddress)
		if err != nil {
			server.logger.Fatalf("Failed to Initialize Exporter: %v", err)
		}
		exp = jaegerExp
	}

	tp := newTraceProvider(exp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, tp.Tracer(serviceName)
}

func (server *Server) initMongoClient() *mongo.Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := store.GetClientWithHTTPConfig(ctx, server.config.MongoURI, httpClient)
	if err != nil {
		server.logger.Fatal(err)
	}
	return client
}

// initCitiesCache returns nil when no redis host is configured.
func (server *Server) initCitiesCache(tracer trace.Tracer) domain.CitiesCache {
	if server.config.RedisHost == "" {
		server.logger.Info("REDIS_HOST not set, unique cities are not cached")
		return nil
	}
	client, err := store.GetRedisClient(server.config.RedisHost, server.config.RedisPort)
	if err != nil {
		server.logger.WithError(err).Warn("redis not reachable at startup")
	}
	return cache.NewCitiesRedisCache(client, server.config.CitiesTTL, tracer, server.logger)
}

func (server *Server) initPropertyStore(client *mongo.Client, tracer trace.Tracer) domain.PropertyStore {
	return store.NewPropertyMongoDBStore(client, tracer)
}

func (server *Server) initReviewStore(client *mongo.Client, tracer trace.Tracer) domain.ReviewStore {
	return store.NewReviewMongoDBStore(client, tracer, server.logger)
}

func (server *Server) initUserStore(client *mongo.Client, tracer trace.Tracer) domain.UserStore {
	return store.NewUserMongoDBStore(client, tracer)
}

func (server *Server) initPropertyService(properties domain.PropertyStore, users domain.UserStore, citiesCache domain.CitiesCache, tracer trace.Tracer) *application.PropertyService {
	return application.NewPropertyService(properties, users, citiesCache, tracer, server.logger)
}

func (server *Server) initReviewService(reviews domain.ReviewStore, properties domain.PropertyStore, users domain.UserStore, tracer trace.Tracer) *application.ReviewService {
	return application.NewReviewService(reviews, properties, users, tracer, server.logger)
}

func (server *Server) initAuthorizer() *casbinAuthorization.Authorizer {
	enforcer, err := casbinAuthorization.NewEnforcer(server.config.ModelPath, server.config.PolicyPath)
	if err != nil {
		server.logger.Fatal(err)
	}
	authorizer, err := casbinAuthorization.NewAuthorizer([]byte(server.config.SecretKey), enforcer, server.logger)
	if err != nil {
		server.logger.Fatal(err)
	}
	server.logger.Info("successful init of enforcer")
	return authorizer
}

func (server *Server) Start() {
	tp, tracer := server.initTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	mongoClient := server.initMongoClient()
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			server.logger.WithError(err).Error("mongo disconnect")
		}
	}()

	propertyStore := server.initPropertyStore(mongoClient, tracer)
	reviewStore := server.initReviewStore(mongoClient, tracer)
	userStore := server.initUserStore(mongoClient, tracer)
	citiesCache := server.initCitiesCache(tracer)

	propertyService := server.initPropertyService(propertyStore, userStore, citiesCache, tracer)
	reviewService := server.initReviewService(reviewStore, propertyStore, userStore, tracer)

	router := NewRouter(
		server.initAuthorizer(),
		server.logger,
		handlers.NewHealthHandler(store.MongoPinger{Client: mongoClient}),
		handlers.NewPropertyHandler(propertyService, tracer, server.logger),
		handlers.NewReviewHandler(reviewService, tracer, server.logger),
	)

	server.start(router)
}

// MigrateReviews runs the legacy reference migration once.
func (server *Server) MigrateReviews(ctx context.Context) (*domain.MigrationResult, error) {
	tp, tracer := server.initTracer()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	mongoClient := server.initMongoClient()
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	reviewService := server.initReviewService(
		server.initReviewStore(mongoClient, tracer),
		server.initPropertyStore(mongoClient, tracer),
		server.initUserStore(mongoClient, tracer),
		tracer,
	)
	return reviewService.MigrateLegacyReferences(ctx)
}

type routeInitializer interface {
	Init(router *mux.Router)
}

func NewRouter(authorizer *casbinAuthorization.Authorizer, logger *logrus.Logger, routes ...routeInitializer) http.Handler {
	router := mux.NewRouter()
	router.Use(handlers.ExtractTraceInfoMiddleware)
	router.Use(handlers.RequestLogger(logger))
	router.Use(handlers.MiddlewareContentTypeSet)
	router.Use(authorizer.CasbinMiddleware)

	for _, r := range routes {
		r.Init(router)
	}

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", handlers.RequestIDHeader}),
	)
	return cors(router)
}

func (server *Server) start(handler http.Handler) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", server.config.Port),
		Handler:      handler,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	wait := time.Second * 15
	go func() {
		server.logger.Infof("Server listening on port %s", server.config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.logger.Error(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		server.logger.Fatalf("Error Shutting Down Server %s", err)
	}
	server.logger.Info("Server Gracefully Stopped")
}
