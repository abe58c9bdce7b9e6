package components

import (
	"context"
	"fmt"
	"log/slog"

	"bistro/internal/infra/floorplan"
	"bistro/internal/infra/lock"
	"bistro/internal/infra/memstore"
	"bistro/internal/infra/notify"
	"bistro/internal/infra/repository"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/telemetry"
	"bistro/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverLocal    = "local"
	DriverRedis    = "redis"
	DriverLog      = "log"
	DriverAMQP     = "amqp"
)

// StoreModule selects the reservation store. The postgres store expects a *pgxpool.Pool in the graph.
func StoreModule(driver string) fx.Option {
	switch driver {
	case DriverMemory:
		return fx.Module("persistence/memory",
			fx.Provide(
				fx.Annotate(
					func(policy shared.Policy) *memstore.Store {
						return memstore.New(policy.OccupancyWindow)
					},
					fx.As(new(shared.ReservationStore)),
				),
			),
		)
	case DriverPostgres:
		return fx.Module("persistence/postgres",
			fx.Provide(
				fx.Annotate(
					func(pool *pgxpool.Pool, policy shared.Policy, logger *slog.Logger) *repository.ReservationRepository {
						return repository.NewReservationRepository(pool, policy.OccupancyWindow, logger)
					},
					fx.As(new(shared.ReservationStore)),
				),
			),
		)
	default:
		return fx.Error(fmt.Errorf("unknown STORE_DRIVER %q", driver))
	}
}

func LockModule(driver string) fx.Option {
	switch driver {
	case DriverLocal:
		return fx.Module("lock/local",
			fx.Provide(
				fx.Annotate(lock.NewLocal, fx.As(new(shared.DateLocker))),
			),
		)
	case DriverRedis:
		return fx.Module("lock/redis",
			fx.Provide(
				fx.Annotate(NewRedisLocker, fx.As(new(shared.DateLocker))),
			),
		)
	default:
		return fx.Error(fmt.Errorf("unknown LOCK_DRIVER %q", driver))
	}
}

func NewRedisLocker(lc fx.Lifecycle, cfg config.Config) (*lock.Redis, error) {
	client := lock.NewRedisClient(cfg.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return lock.NewRedis(client, cfg.Redis.LockTTL), nil
}

func NotifierModule(driver string) fx.Option {
	switch driver {
	case DriverLog:
		return fx.Module("notify/log",
			fx.Provide(
				fx.Annotate(notify.NewLogNotifier, fx.As(new(shared.Notifier))),
			),
		)
	case DriverAMQP:
		return fx.Module("notify/amqp",
			fx.Provide(
				fx.Annotate(NewAMQPNotifier, fx.As(new(shared.Notifier))),
			),
		)
	default:
		return fx.Error(fmt.Errorf("unknown NOTIFIER_DRIVER %q", driver))
	}
}

func NewAMQPNotifier(lc fx.Lifecycle, cfg config.Config) *notify.AMQPNotifier {
	n := notify.NewAMQPNotifier(cfg.AMQP)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return n.Close()
		},
	})
	return n
}

var FloorplanModule = fx.Module("floorplan",
	fx.Provide(
		NewFloorplan,
		func(f *floorplan.Floorplan) shared.TableInventory { return f },
		func(f *floorplan.Floorplan) shared.HoursSource { return f },
	),
)

func NewFloorplan(lc fx.Lifecycle, cfg config.Config, metrics *telemetry.Metrics) (*floorplan.Floorplan, error) {
	f, err := floorplan.Load(cfg.Floorplan.Path, metrics)
	if err != nil {
		return nil, err
	}
	if !cfg.Floorplan.Watch {
		return f, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return f.Watch(ctx)
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
	return f, nil
}
