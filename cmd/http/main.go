package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/wayfare-app/wayfare/internal/application/admission"
	"github.com/wayfare-app/wayfare/internal/application/authz"
	"github.com/wayfare-app/wayfare/internal/domain"
	"github.com/wayfare-app/wayfare/internal/infrastructure/auth"
	"github.com/wayfare-app/wayfare/internal/infrastructure/configs"
	"github.com/wayfare-app/wayfare/internal/infrastructure/events"
	"github.com/wayfare-app/wayfare/internal/infrastructure/logging"
	"github.com/wayfare-app/wayfare/internal/infrastructure/messaging"
	"github.com/wayfare-app/wayfare/internal/infrastructure/metrics"
	"github.com/wayfare-app/wayfare/internal/infrastructure/ratelimiter"
	memoryRepository "github.com/wayfare-app/wayfare/internal/infrastructure/repository"
	"github.com/wayfare-app/wayfare/internal/infrastructure/tracing"
	"github.com/wayfare-app/wayfare/internal/infrastructure/ws"
	"github.com/wayfare-app/wayfare/internal/persistence/db"
	mongoRepository "github.com/wayfare-app/wayfare/internal/persistence/repository"
	"github.com/wayfare-app/wayfare/internal/presentation/api"
	"github.com/wayfare-app/wayfare/internal/presentation/handler/chat"
	"github.com/wayfare-app/wayfare/internal/presentation/handler/groups"
	"github.com/wayfare-app/wayfare/internal/presentation/handler/health"
)

const serviceName = "wayfare-api"

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	var (
		groupRepository   domain.GroupRepository
		requestRepository domain.JoinRequestRepository
		messageRepository domain.MessageRepository
		userRepository    domain.UserRepository
	)

	if cfg.Mongo.Enabled {
		mongoCfg := &db.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		}

		client, err := db.NewMongoClient(ctx, mongoCfg)
		if err != nil {
			log.Fatal(err)
		}
		defer db.DisconnectMongo(context.Background(), client)

		database := db.GetDatabase(client, mongoCfg)
		if err := mongoRepository.EnsureIndexes(ctx, database); err != nil {
			log.Fatal(err)
		}

		groupRepository = mongoRepository.NewGroupRepository(database)
		requestRepository = mongoRepository.NewJoinRequestRepository(database)
		messageRepository = mongoRepository.NewMessageRepository(database)
		userRepository = mongoRepository.NewUserRepository(database)
	} else {
		logger.Warn("mongo is disabled, using in-memory stores")

		groupRepository = memoryRepository.NewGroupRepository()
		requestRepository = memoryRepository.NewJoinRequestRepository()
		messageRepository = memoryRepository.NewMessageRepository(cfg.MessageStore.Capacity)
		userRepository = memoryRepository.NewUserRepository()
	}

	var publisher events.AdmissionPublisher = events.NoopPublisher{}
	if cfg.AMQP.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		publisher = events.NewAdmissionPublisher(rabbitmq)

		consumer := events.NewAdmissionConsumer(rabbitmq, logger)
		go func() {
			if err := consumer.Listen(); err != nil {
				logger.Errorw("admission consumer stopped", "error", err)
			}
		}()
	}

	m := metrics.New()
	authorizer := authz.New(groupRepository)
	verifier := auth.NewJWTVerifier(cfg.Auth.Secret)

	engine := admission.NewEngine(
		groupRepository,
		requestRepository,
		userRepository,
		authorizer,
		publisher,
		m,
		logger,
	)

	registry := ws.NewRegistry(
		authorizer,
		messageRepository,
		m,
		logger,
		cfg.Chat.HistoryLimit,
		cfg.Chat.RoomGracePeriod,
	)

	groupsHandler := groups.NewHandler(
		engine,
		messageRepository,
		userRepository,
		authorizer,
		cfg.Chat.HistoryLimit,
		logger,
	)
	chatHandler := chat.NewHandler(verifier, userRepository, registry, cfg.Chat.SendBuffer, logger)
	healthHandler := health.NewHandler()

	rl := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rl.Close()

	app := api.NewApplication(*cfg, groupsHandler, chatHandler, healthHandler, verifier, m, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
