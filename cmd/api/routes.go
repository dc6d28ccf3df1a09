package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"salesagent-backend/internal/ai"
	"salesagent-backend/internal/analyses"
	"salesagent-backend/internal/auth"
	"salesagent-backend/internal/config"
	"salesagent-backend/internal/customers"
	"salesagent-backend/internal/documents"
	"salesagent-backend/internal/employees"
	"salesagent-backend/internal/meetings"
	"salesagent-backend/internal/metrics"
	"salesagent-backend/internal/middleware"
	"salesagent-backend/internal/projects"
	"salesagent-backend/internal/proposals"
	"salesagent-backend/internal/questions"
	"salesagent-backend/internal/rag"
	"salesagent-backend/internal/references"
	"salesagent-backend/internal/transport"
	"salesagent-backend/internal/users"
)

type handlerSet struct {
	ai         *ai.Handler
	rag        *rag.Handler
	users      *users.Handler
	projects   *projects.Handler
	customers  *customers.Handler
	employees  *employees.Handler
	references *references.Handler
	analyses   *analyses.Handler
	questions  *questions.Handler
	meetings   *meetings.Handler
	proposals  *proposals.Handler
	documents  *documents.Handler
}

func newRouter(cfg *config.Config, logger *slog.Logger, jwtManager *auth.Manager, h handlerSet) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(120 * time.Second))
	r.Use(middleware.Authenticate(jwtManager))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	window := time.Duration(cfg.RateLimitWindowSec) * time.Second
	aiLimiter := middleware.NewRateLimiter(cfg.RateLimitAI, window)
	ragLimiter := middleware.NewRateLimiter(cfg.RateLimitAI, window)

	register := func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.Post("/login", h.users.Login)
			a.Post("/refresh", h.users.Refresh)
			a.Post("/logout", h.users.Logout)
			a.With(middleware.RequireUser(jwtManager)).Get("/me", h.users.Me)
		})

		api.Route("/ai", func(a chi.Router) {
			a.Use(aiLimiter.Middleware)
			a.Use(middleware.RequireUser(jwtManager))
			a.Post("/analyze-rfp", h.ai.AnalyzeRFP)
			a.Post("/generate-questions", h.ai.GenerateQuestions)
			a.Post("/generate-agenda", h.ai.GenerateAgenda)
			a.Post("/generate-chapter-content", h.ai.GenerateChapterContent)
			a.Post("/generate-cover-letter", h.ai.GenerateCoverLetter)
			a.Post("/generate-proposal-structure", h.ai.GenerateProposalStructure)
			a.Post("/extract-insights", h.ai.ExtractInsights)
			a.Post("/compliance-check", h.ai.CheckCompliance)
		})

		api.Route("/rag", func(g chi.Router) {
			g.Use(ragLimiter.Middleware)
			g.Use(middleware.RequireUser(jwtManager))
			g.Post("/search", h.rag.Search)
			g.Post("/context", h.rag.Context)
			g.Post("/analyze", h.rag.Analyze)
			g.Post("/corpus", h.rag.CreateCorpus)
			g.Get("/corpus", h.rag.ListCorpora)
			g.Delete("/corpus", h.rag.DeleteCorpus)
			g.Post("/documents", h.rag.ImportDocument)
			g.Get("/documents", h.rag.ListDocuments)
			g.Delete("/documents", h.rag.DeleteDocument)
			g.Post("/embeddings", h.rag.Embeddings)
		})

		api.Group(func(p chi.Router) {
			p.Use(middleware.RequireUser(jwtManager))

			p.Route("/projects", func(pr chi.Router) {
				pr.Get("/", h.projects.List)
				pr.Post("/", h.projects.Create)
				pr.Route("/{id}", func(one chi.Router) {
					one.Get("/", h.projects.Get)
					one.Put("/", h.projects.Update)
					one.Delete("/", h.projects.Delete)
					one.Post("/advance", h.projects.Advance)
					one.Post("/jump", h.projects.Jump)
					one.Get("/workflow", h.projects.Workflow)

					one.Get("/analysis", h.analyses.Get)
					one.Put("/analysis", h.analyses.Put)

					one.Route("/questions", func(q chi.Router) {
						q.Get("/", h.questions.List)
						q.Post("/", h.questions.Append)
						q.Post("/generate", h.questions.Generate)
						q.Post("/answers", h.questions.SubmitAnswers)
						q.Get("/export", h.questions.Export)
						q.Patch("/{qid}", h.questions.Patch)
					})

					one.Route("/meeting", func(m chi.Router) {
						m.Get("/", h.meetings.Get)
						m.Put("/", h.meetings.Put)
						m.Patch("/notes", h.meetings.PatchNotes)
						m.Post("/agenda", h.meetings.GenerateAgenda)
						m.Post("/insights", h.meetings.ExtractInsights)
					})

					one.Route("/proposal", func(pp chi.Router) {
						pp.Get("/", h.proposals.Get)
						pp.Put("/", h.proposals.Put)
						pp.Post("/structure", h.proposals.GenerateStructure)
						pp.Post("/compliance", h.proposals.CheckCompliance)
						pp.Get("/export", h.proposals.Export)
						pp.Post("/send", h.proposals.Send)
						pp.Patch("/chapters/{cid}", h.proposals.PatchChapter)
						pp.Post("/chapters/{cid}/generate", h.proposals.GenerateChapter)
					})

					one.Get("/documents", h.documents.List)
					one.Post("/documents", h.documents.Upload)
					one.Delete("/documents/{docId}", h.documents.Delete)
				})
			})

			p.Route("/customers", func(c chi.Router) {
				c.Get("/", h.customers.List)
				c.Post("/", h.customers.Create)
				c.Get("/{id}", h.customers.Get)
				c.Put("/{id}", h.customers.Update)
				c.Delete("/{id}", h.customers.Delete)
			})

			p.Route("/employees", func(e chi.Router) {
				e.Get("/", h.employees.List)
				e.Post("/", h.employees.Create)
				e.Get("/{id}", h.employees.Get)
				e.Put("/{id}", h.employees.Update)
				e.Delete("/{id}", h.employees.Delete)
			})

			p.Route("/references", func(rf chi.Router) {
				rf.Get("/", h.references.List)
				rf.Post("/", h.references.Create)
				rf.Get("/{id}", h.references.Get)
				rf.Put("/{id}", h.references.Update)
				rf.Delete("/{id}", h.references.Delete)
			})
		})

		api.Route("/users", func(u chi.Router) {
			u.Use(middleware.RequireRole(jwtManager, users.RoleAdmin))
			u.Get("/", h.users.List)
			u.Post("/", h.users.Create)
		})
	}

	r.Group(register)
	r.Route("/api", register)
	r.Route("/api/v1", register)

	return r
}
