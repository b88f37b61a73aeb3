package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pure-justin/power-to-the-people-sub003/internal/config"
	"github.com/pure-justin/power-to-the-people-sub003/internal/geo"
	"github.com/pure-justin/power-to-the-people-sub003/internal/notify"
	"github.com/pure-justin/power-to-the-people-sub003/internal/scoring"
	"github.com/pure-justin/power-to-the-people-sub003/internal/service"
	"github.com/pure-justin/power-to-the-people-sub003/internal/store"
)

// runtime bundles the wired components a command needs.
type runtime struct {
	cfg        *config.Config
	store      store.Store
	svc        *service.Service
	dispatcher *notify.Dispatcher
}

func setupLogging(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.Development() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// buildRuntime connects the configured store and wires the service graph.
// Callers must invoke shutdown when done.
func buildRuntime(ctx context.Context, cfg *config.Config) (*runtime, func(), error) {
	var st store.Store

	switch cfg.StoreType {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			return nil, nil, err
		}
		mongoStore := store.NewMongoStore(client, cfg.MongoDB)
		if err := mongoStore.EnsureIndexes(connectCtx); err != nil {
			slog.Warn("failed to create indexes", "error", err)
		}
		st = mongoStore
		slog.Info("using mongodb store", "db", cfg.MongoDB)

	case "firestore":
		fsStore, err := store.NewFirestoreStore(cfg.FirestoreProjectID)
		if err != nil {
			return nil, nil, err
		}
		st = fsStore
		slog.Info("using firestore store", "project", cfg.FirestoreProjectID)

	default:
		st = store.NewMemoryStore()
		slog.Info("using in-memory store (development mode)")
	}

	dispatcher := notify.NewDispatcher("marketd")
	if cfg.WebhookURL != "" {
		for _, eventType := range []string{
			notify.EventListingCreated,
			notify.EventListingCancelled,
			notify.EventListingCompleted,
			notify.EventListingWindowExtended,
			notify.EventListingRequeued,
			notify.EventBidSubmitted,
			notify.EventBidAccepted,
			notify.EventSLAWarning,
			notify.EventSLAViolated,
		} {
			dispatcher.RegisterEndpoint(eventType, cfg.WebhookURL)
		}
	}
	if cfg.MessageGatewayURL != "" {
		dispatcher.SetMessageGateway(cfg.MessageGatewayURL)
	}

	svc := service.New(st, geo.NewResolver(st), dispatcher)

	if cfg.WeightsPath != "" {
		weightsCfg, err := scoring.LoadWeightsConfig(cfg.WeightsPath)
		if err != nil {
			slog.Warn("failed to load weights file, keeping stored weights", "path", cfg.WeightsPath, "error", err)
		} else if err := svc.UpdateWeights(ctx, weightsCfg); err != nil {
			slog.Warn("failed to store weights from file", "error", err)
		} else {
			slog.Info("loaded scoring weights", "path", cfg.WeightsPath)
		}
	}

	rt := &runtime{cfg: cfg, store: st, svc: svc, dispatcher: dispatcher}
	shutdown := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}
	return rt, shutdown, nil
}
