package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/catalog-admin/internal/config"
	apihttp "github.com/tuanvumaihuynh/catalog-admin/internal/http"
	"github.com/tuanvumaihuynh/catalog-admin/internal/http/metric"
	"github.com/tuanvumaihuynh/catalog-admin/internal/http/middleware"
	"github.com/tuanvumaihuynh/catalog-admin/internal/model"
	"github.com/tuanvumaihuynh/catalog-admin/internal/querycache"
	"github.com/tuanvumaihuynh/catalog-admin/pkg/validator"
)

var tracer = otel.Tracer("internal/dashboard")

//go:embed templates/*.html
var templateFS embed.FS

// API is everything the dashboard needs from the catalog API.
type API interface {
	ProductAPI
	Login(ctx context.Context, email, password string) (ok bool, message string, err error)
}

// Service is the server-rendered admin UI.
type Service struct {
	cfg     config.Dashboard
	logger  *slog.Logger
	metrics *metric.Metrics

	api       API
	cache     *querycache.Client
	validator validator.Validator
	store     sessions.Store
	sessions  *registry
	templates *template.Template
}

type CleanupFunc = apihttp.CleanupFunc

func New(
	cfg config.Dashboard,
	logger *slog.Logger,
	api API,
	cache *querycache.Client,
) (*Service, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	tmpl, err := template.New("").
		Funcs(template.FuncMap{"formatPrice": formatPrice}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Service{
		cfg:       cfg,
		logger:    logger.With(slog.String("service", "dashboard")),
		metrics:   metric.New("dashboard"),
		api:       api,
		cache:     cache,
		validator: v,
		store:     newCookieStore(cfg.SessionKey, cfg.SecureCookie),
		templates: tmpl,
	}
	s.sessions = newRegistry(sessionMaxAge, func() *Controller {
		return NewController(s.api, s.cache, s.validator)
	})

	return s, nil
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return apihttp.RunWithServer(ctx, s.logger, s.cfg.Port, s.cfg.Timeouts, s.Router())
}

func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(s.logger),
		chimiddleware.StripSlashes,
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Logging(s.logger),
	)

	r.Get("/", s.loginPage)
	r.Post("/login", s.login)
	r.Post("/logout", s.logout)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/", s.dashboardPage)
		r.Post("/products/new", s.action(func(r *http.Request, c *Controller) error {
			return c.OpenCreate()
		}))
		r.Post("/products/{id}/edit", s.action(func(r *http.Request, c *Controller) error {
			return c.OpenEdit(r.Context(), chi.URLParam(r, "id"))
		}))
		r.Post("/products/{id}/delete", s.action(func(r *http.Request, c *Controller) error {
			return c.Delete(r.Context(), chi.URLParam(r, "id"))
		}))
		r.Post("/form/submit", s.action(func(r *http.Request, c *Controller) error {
			return c.Submit(r.Context(), FormValues{
				Name:        r.PostFormValue("name"),
				Category:    r.PostFormValue("category"),
				Brand:       r.PostFormValue("brand"),
				Description: r.PostFormValue("description"),
				Price:       r.PostFormValue("price"),
			})
		}))
		r.Post("/form/cancel", s.action(func(_ *http.Request, c *Controller) error {
			return c.Cancel()
		}))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	return r
}

func (s *Service) session(r *http.Request) *sessions.Session {
	// A cookie that fails to decode yields a fresh session, which is what we want.
	sess, _ := s.store.Get(r, sessionName)
	return sess
}

func (s *Service) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(s.session(r))
		if id == "" {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := withController(r.Context(), s.sessions.get(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// action runs a state transition and sends the browser back to the dashboard.
func (s *Service) action(fn func(r *http.Request, c *Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := controllerFrom(r.Context())
		if err := fn(r, c); err != nil {
			level := slog.LevelWarn
			if errors.Is(err, ErrInvalidForm) {
				level = slog.LevelDebug
			}
			s.logger.Log(r.Context(), level, "dashboard action failed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			c.Reject(err)
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

type loginView struct {
	Email       string
	FieldErrors map[string]string
	Message     string
}

func (s *Service) loginPage(w http.ResponseWriter, r *http.Request) {
	if sessionID(s.session(r)) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginView{})
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	values := LoginValues{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	view := loginView{Email: values.Email}

	fieldErrs, err := validateLogin(s.validator, values)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if len(fieldErrs) > 0 {
		view.FieldErrors = fieldErrs
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", view)
		return
	}

	ok, msg, err := s.api.Login(r.Context(), values.Email, values.Password)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "error calling auth endpoint", slog.Any("error", err))
		view.Message = "Unable to reach the catalog API"
		s.render(w, r, http.StatusBadGateway, "login.html", view)
		return
	}
	if !ok {
		view.Message = msg
		s.render(w, r, http.StatusUnauthorized, "login.html", view)
		return
	}

	sess := s.session(r)
	markAuthenticated(sess)
	if err := sess.Save(r, w); err != nil {
		s.renderError(w, r, fmt.Errorf("save session: %w", err))
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	if id := sessionID(sess); id != "" {
		s.sessions.drop(id)
	}

	clearSession(sess)
	if err := sess.Save(r, w); err != nil {
		s.logger.WarnContext(r.Context(), "error clearing session", slog.Any("error", err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type dashboardView struct {
	Products  []model.Product
	LoadError string
	State     State
}

func (v dashboardView) FormVisible() bool {
	return v.State.Mode == ModeFormOpen || v.State.Mode == ModeSaving
}

func (v dashboardView) CanOpenForm() bool {
	return v.State.Mode == ModeViewing
}

func (v dashboardView) SubmitLabel() string {
	switch {
	case v.State.Mode == ModeSaving:
		return "Saving..."
	case v.State.EditingID != "":
		return "Update"
	default:
		return "Create"
	}
}

func (v dashboardView) IsDeleting(id string) bool {
	return v.State.Mode == ModeDeleting && v.State.DeletingID == id
}

func (s *Service) dashboardPage(w http.ResponseWriter, r *http.Request) {
	c := controllerFrom(r.Context())

	var view dashboardView
	products, err := c.Products(r.Context())
	if err != nil {
		s.logger.WarnContext(r.Context(), "error loading products", slog.Any("error", err))
		view.LoadError = errorText(err)
	}
	view.Products = products
	view.State = c.Snapshot()

	s.render(w, r, http.StatusOK, "dashboard.html", view)
}

func (s *Service) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.renderError(w, r, fmt.Errorf("execute template %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WarnContext(r.Context(), "error writing page", slog.Any("error", err))
	}
}

func (s *Service) renderError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "dashboard error", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
