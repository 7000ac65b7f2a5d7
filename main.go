package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/formrelay/webform-relay-api/config"
	"github.com/formrelay/webform-relay-api/handlers"
	"github.com/formrelay/webform-relay-api/jobs"
	"github.com/formrelay/webform-relay-api/metrics"
	"github.com/formrelay/webform-relay-api/models"

	"github.com/Noah-Huppert/golog"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoPinger adapts a MongoDB client to the handlers.Pinger interface used
// by the health endpoint
type mongoPinger struct {
	// ctx is the application context
	ctx context.Context

	// client is the MongoDB client to ping
	client *mongo.Client
}

// Ping implements handlers.Pinger
func (p mongoPinger) Ping() error {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	return p.client.Ping(ctx, nil)
}

func main() {
	// {{{1 Context
	ctx, ctxCancel := context.WithCancel(context.Background())

	// signals holds signals received by process
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		<-signals

		ctxCancel()
	}()

	// {{{1 Logger
	logger := golog.NewStdLogger("webform-relay-api")

	// {{{1 Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("failed to load configuration: %s", err.Error())
	}

	cfgStr, err := cfg.String()
	if err != nil {
		logger.Fatalf("failed to convert configuration into string: %s", err.Error())
	}

	logger.Debugf("loaded configuration: %s", cfgStr)

	// {{{2 Require auth secrets unless anonymous access was opted into
	tokens := map[string]string{
		"structure":  cfg.StructureAPIToken,
		"submission": cfg.SubmissionAPIToken,
	}

	for group, token := range tokens {
		if token != "" {
			continue
		}

		if !cfg.AllowAnonymous {
			logger.Fatalf("%s API token is empty, set it or explicitly "+
				"opt out of authentication with APP_ALLOW_ANONYMOUS=true", group)
		}

		logger.Warnf("%s endpoint group is running without authentication", group)
	}

	// {{{1 MongoDB
	// {{{2 Build connection options
	mDbConnOpts := options.Client()
	mDbConnOpts.SetAuth(options.Credential{
		Username: cfg.DbUser,
		Password: cfg.DbPassword,
	})
	mDbConnOpts.SetHosts([]string{
		fmt.Sprintf("%s:%d", cfg.DbHost, cfg.DbPort),
	})

	if err = mDbConnOpts.Validate(); err != nil {
		logger.Fatalf("failed to validate database connection options: %s", err.Error())
	}

	// {{{2 Connect
	mDbClient, err := mongo.Connect(ctx, mDbConnOpts)
	if err != nil {
		logger.Fatalf("failed to connect to database: %s", err.Error())
	}

	if err := mDbClient.Ping(ctx, nil); err != nil {
		logger.Fatalf("failed to test database connection: %s", err.Error())
	}

	mDb := mDbClient.Database(cfg.DbName)

	if err := models.EnsureIndexes(ctx, mDb); err != nil {
		logger.Fatalf("failed to create database indexes: %s", err.Error())
	}

	// {{{2 Stores
	structures := models.MongoStructureStore{
		Coll: mDb.Collection(models.StructuresCollName),
	}
	submissions := models.MongoSubmissionStore{
		Coll: mDb.Collection(models.SubmissionsCollName),
	}
	usage := models.MongoUsageStore{
		Coll: mDb.Collection(models.APIUsageCollName),
	}

	// {{{1 Metrics
	apiMetrics := metrics.NewMetrics()

	// {{{1 Job runner
	jobRunner := &jobs.JobRunner{
		Ctx:     ctx,
		Logger:  logger.GetChild("job-runner"),
		Metrics: apiMetrics,
		Usage:   usage,
	}
	jobRunner.Init()

	go jobRunner.Run()

	// {{{1 Router
	baseHandler := handlers.BaseHandler{
		Ctx:         ctx,
		Logger:      logger.GetChild("handlers"),
		Cfg:         cfg,
		Metrics:     apiMetrics,
		Structures:  structures,
		Submissions: submissions,
	}

	router := mux.NewRouter()

	router.Handle("/health", handlers.HealthHandler{
		BaseHandler: baseHandler.GetChild("health"),
		Store: mongoPinger{
			ctx:    ctx,
			client: mDbClient,
		},
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.Handle("/webform/{id}/structure", handlers.AuthHandler{
		BaseHandler: baseHandler.GetChild("auth"),
		Token:       cfg.StructureAPIToken,
		Handler: handlers.StructureSaveHandler{
			baseHandler.GetChild("structure-save"),
		},
	}).Methods("POST")

	router.Handle("/webform/{id}/structure", handlers.StructureGetHandler{
		baseHandler.GetChild("structure-get"),
	}).Methods("GET")

	router.Handle("/webform/{id}/submission", handlers.AuthHandler{
		BaseHandler: baseHandler.GetChild("auth"),
		Token:       cfg.SubmissionAPIToken,
		Handler: handlers.SubmissionCreateHandler{
			baseHandler.GetChild("submission-create"),
		},
	}).Methods("POST")

	router.Handle("/submissions/pending", handlers.AuthHandler{
		BaseHandler: baseHandler.GetChild("auth"),
		Token:       cfg.StructureAPIToken,
		Handler: handlers.SubmissionsPendingHandler{
			baseHandler.GetChild("submissions-pending"),
		},
	}).Methods("GET")

	router.Handle("/submissions", handlers.AuthHandler{
		BaseHandler: baseHandler.GetChild("auth"),
		Token:       cfg.StructureAPIToken,
		Handler: handlers.SubmissionsListHandler{
			baseHandler.GetChild("submissions-list"),
		},
	}).Methods("GET")

	router.Handle("/submissions/{id}/status", handlers.AuthHandler{
		BaseHandler: baseHandler.GetChild("auth"),
		Token:       cfg.StructureAPIToken,
		Handler: handlers.SubmissionStatusHandler{
			baseHandler.GetChild("submission-status"),
		},
	}).Methods("PATCH")

	router.PathPrefix("/").Handler(handlers.PreFlightOptionsHandler{
		baseHandler.GetChild("preflight"),
	}).Methods("OPTIONS")

	// {{{1 Start HTTP server
	rateLimiter := &handlers.WindowLimiter{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      time.Duration(cfg.RateLimitWindowSeconds) * time.Second,
	}

	server := http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handlers.PanicHandler{
			BaseHandler: baseHandler,
			Handler: handlers.MetricsHandler{
				BaseHandler: baseHandler,
				Handler: handlers.ReqLoggerHandler{
					BaseHandler: baseHandler,
					JobRunner:   jobRunner,
					Handler: handlers.CORSHandler{
						BaseHandler: baseHandler,
						Handler: handlers.RateLimitHandler{
							BaseHandler: baseHandler,
							Limiter:     rateLimiter,
							Handler:     router,
						},
					},
				},
			},
		},
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("failed to serve: %s", err.Error())
		}
	}()

	logger.Infof("started server on %s", cfg.HTTPAddr)

	<-ctx.Done()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Fatalf("failed to shutdown server: %s", err.Error())
	}

	logger.Info("done")
}
