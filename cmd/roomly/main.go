package main

import (
	"context"

	"roomly/internal/meetings/events"
	meetinghandler "roomly/internal/meetings/handler"
	"roomly/internal/meetings/lock"
	meetingrepo "roomly/internal/meetings/repository"
	meetingservice "roomly/internal/meetings/service"
	meetingvalidator "roomly/internal/meetings/validator"
	memberhandler "roomly/internal/members/handler"
	memberrepo "roomly/internal/members/repository"
	memberservice "roomly/internal/members/service"
	membervalidator "roomly/internal/members/validator"
	roomhandler "roomly/internal/rooms/handler"
	roomrepo "roomly/internal/rooms/repository"
	roomservice "roomly/internal/rooms/service"
	roomvalidator "roomly/internal/rooms/validator"
	"roomly/pkg/app"
	"roomly/pkg/config"
)

const ServiceName = "roomly"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Roomly service")
	serverApp := app.NewApplication(cfg)

	roomRepo := roomrepo.NewMongoRoomRepository(cfg)
	memberRepo := memberrepo.NewMongoMemberRepository(cfg)

	locker := initLocker(cfg, serverApp)

	publisher, err := events.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err, "backend", cfg.EventBackend)
	}

	roomService := roomservice.NewRoomService(roomRepo, roomvalidator.NewRoomValidator(), cfg)
	memberService := memberservice.NewMemberService(memberRepo, membervalidator.NewMemberValidator(), cfg)
	meetingService := meetingservice.NewMeetingService(
		meetingrepo.NewMongoMeetingRepository(cfg),
		roomRepo,
		memberRepo,
		locker,
		publisher,
		meetingvalidator.NewMeetingValidator(),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName, "lock_backend", cfg.LockBackend, "event_backend", cfg.EventBackend)

	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.OnShutdown(cfg.GracefulShutdown)

	serverApp.SetApp(dependencyChecks(cfg),
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		memberhandler.NewMemberHandler(memberService, cfg.Log),
		meetinghandler.NewMeetingHandler(meetingService, cfg.Log),
	)
	serverApp.Run()
}

// initLocker builds the slot locker. The Mongo backend needs a sweeper to
// clear locks left behind by crashed requests; Redis expires them itself.
func initLocker(cfg *config.Config, serverApp *app.Application) lock.Locker {
	if cfg.LockBackend == config.LockBackendRedis {
		return lock.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL)
	}

	slotLocks := meetingrepo.NewSlotLockRepository(cfg)
	sweeper, err := lock.NewSweeper(slotLocks, cfg.LockSweepSchedule, cfg.WriteTimeout, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Invalid lock sweep schedule", "error", err, "schedule", cfg.LockSweepSchedule)
	}
	sweeper.Start()
	serverApp.OnShutdown(sweeper.Stop)

	return lock.NewMongoLocker(slotLocks, cfg.LockTTL)
}

func dependencyChecks(cfg *config.Config) []app.DependencyCheck {
	checks := []app.DependencyCheck{{
		Name: "mongodb",
		Ping: func(ctx context.Context) error { return cfg.Client.Mongo.Ping(ctx, nil) },
	}}
	if cfg.Client.Redis != nil {
		checks = append(checks, app.DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return cfg.Client.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}
