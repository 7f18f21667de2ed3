package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/gold"
	"github.com/herohabits/platform/internal/guard"
	"github.com/herohabits/platform/internal/handler"
	parenthandler "github.com/herohabits/platform/internal/handler/parent"
	"github.com/herohabits/platform/internal/leveling"
	"github.com/herohabits/platform/internal/repository"
	"github.com/herohabits/platform/internal/service"
	"github.com/herohabits/platform/internal/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) (chi.Router, error) {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	characterRepo := repository.NewCharacterRepository()
	questRepo := repository.NewQuestRepository()
	completionRepo := repository.NewCompletionRepository()
	traitRepo := repository.NewTraitRepository()
	treasureRepo := repository.NewTreasureRepository()
	levelRepo := repository.NewLevelRepository()
	parentRepo := repository.NewParentAccountRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Leveling
	levelTable, err := leveling.NewTable(pool, levelRepo)
	if err != nil {
		return nil, fmt.Errorf("create level table: %w", err)
	}
	engine := leveling.NewEngine(levelTable)
	distributor := leveling.NewDistributor(traitRepo, engine)

	// Gold ledger
	ledger := gold.NewLedger(characterRepo)

	// Workflows
	completionWf := workflow.NewCompletionWorkflow(pool, characterRepo, questRepo,
		completionRepo, traitRepo, outboxRepo, ledger, engine, distributor, logger)
	purchaseWf := workflow.NewPurchaseWorkflow(pool, characterRepo, treasureRepo,
		outboxRepo, ledger, logger)

	// Services
	authSvc := service.NewAuthService(pool, parentRepo, characterRepo, jwtMgr)

	// Child submissions are rate limited per character.
	submitLimiter := guard.NewRateLimiter(30, time.Minute)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	characterHandler := handler.NewCharacterHandler(pool, characterRepo, traitRepo, engine)
	questHandler := handler.NewQuestHandler(pool, characterRepo, questRepo, traitRepo)
	completionHandler := handler.NewCompletionHandler(pool, completionRepo, completionWf, submitLimiter)
	treasureHandler := handler.NewTreasureHandler(pool, characterRepo, treasureRepo, purchaseWf)

	// Parent handlers
	parentCharacters := parenthandler.NewCharacterHandler(pool, characterRepo, traitRepo, outboxRepo)
	parentQuests := parenthandler.NewQuestHandler(pool, questRepo, traitRepo)
	parentCompletions := parenthandler.NewCompletionHandler(pool, completionRepo, completionWf)
	parentTreasures := parenthandler.NewTreasureHandler(pool, treasureRepo)
	parentTraits := parenthandler.NewTraitHandler(pool, traitRepo)
	parentLevels := parenthandler.NewLevelHandler(pool, levelRepo, levelTable)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/child-login", authHandler.ChildLogin)
	})

	// Child-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateChild(jwtMgr))

		r.Get("/characters/me", characterHandler.Me)
		r.Get("/quests", questHandler.ListActive)

		r.Route("/completions", func(r chi.Router) {
			r.Post("/", completionHandler.Submit)
			r.Get("/", completionHandler.History)
		})

		r.Route("/treasures", func(r chi.Router) {
			r.Get("/", treasureHandler.ListAvailable)
			r.Post("/{id}/purchase", treasureHandler.Purchase)
		})
		r.Get("/purchases", treasureHandler.PurchaseHistory)
	})

	// Parent-authenticated routes
	r.Route("/parent", func(r chi.Router) {
		r.Use(auth.AuthenticateParent(jwtMgr))

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", parentCharacters.List)
			r.Post("/", parentCharacters.Create)
			r.Get("/{id}", parentCharacters.Get)
			r.Patch("/{id}/pin", parentCharacters.SetPIN)
			r.Delete("/{id}", parentCharacters.Delete)
		})

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", parentQuests.List)
			r.Post("/", parentQuests.Create)
			r.Put("/{id}", parentQuests.Update)
			r.Patch("/{id}/toggle", parentQuests.Toggle)
			r.Delete("/{id}", parentQuests.Delete)
			r.Get("/{id}/traits", parentQuests.Traits)
		})

		r.Route("/completions", func(r chi.Router) {
			r.Get("/pending", parentCompletions.ListPending)
			r.Post("/{id}/accept", parentCompletions.Accept)
			r.Post("/{id}/deny", parentCompletions.Deny)
			r.Post("/bulk-accept", parentCompletions.BulkAccept)
			r.Post("/bulk-deny", parentCompletions.BulkDeny)
		})

		r.Route("/treasures", func(r chi.Router) {
			r.Get("/", parentTreasures.List)
			r.Post("/", parentTreasures.Create)
			r.Put("/{id}", parentTreasures.Update)
			r.Patch("/{id}/toggle", parentTreasures.Toggle)
			r.Delete("/{id}", parentTreasures.Delete)
		})

		r.Get("/traits", parentTraits.List)

		r.Route("/levels", func(r chi.Router) {
			r.Get("/", parentLevels.List)
			r.Put("/", parentLevels.Upsert)
			r.Delete("/{level}", parentLevels.Delete)
		})
	})

	return r, nil
}
