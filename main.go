package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	auth "Hydra/internal/auth"
	batch "Hydra/internal/calc/batch"
	coil "Hydra/internal/calc/coil"
	pipelength "Hydra/internal/calc/pipelength"
	report "Hydra/internal/calc/report"
	catalog "Hydra/internal/catalog"
	config "Hydra/internal/config"
	hydraulics "Hydra/internal/hydraulics"
	live "Hydra/internal/live"
	repo "Hydra/internal/repo"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

// Deps is everything the routes need. Auth is nil when no user store is
// configured; the tools are then served without a session.
type Deps struct {
	Config  *config.Config
	Catalog *catalog.Set
	Auth    *auth.Authenv
}

func HandleList(mux *mux.Router, d Deps) {
	calc := pipelength.New(d.Catalog, d.Config.ViscosityModel(), mustSolver(d.Config), d.Config.Losses.ElbowCoefficient)

	limiter := auth.NewIPRateLimiter(rate.Limit(d.Config.Server.RateLimit), d.Config.Server.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	catalogH := &catalog.Handler{Set: d.Catalog}
	api.HandleFunc("/catalog/materials", catalogH.Materials).Methods("GET")
	api.HandleFunc("/catalog/materials/{material}/sizes", catalogH.Sizes).Methods("GET")
	api.HandleFunc("/catalog/pumps", catalogH.Pumps).Methods("GET")
	api.HandleFunc("/catalog/coils", catalogH.Coils).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	if d.Auth != nil {
		api.HandleFunc("/login", d.Auth.AuthHandler).Methods("POST")
		api.HandleFunc("/register", d.Auth.RegisterHandler).Methods("POST")
		api.HandleFunc("/logout", d.Auth.Logout).Methods("POST")
		secureApi.Use(d.Auth.AuthMiddleware)
	}

	pipeH := &pipelength.Handler{Calculator: calc}
	coilH := &coil.Handler{Coils: d.Catalog.Coils}
	batchH := &batch.Handler{Eval: &batch.Evaluator{Calc: calc, Workers: d.Config.Batch.Workers}}
	reportH := &report.Handler{Calc: calc}
	liveS := live.NewServer(calc)

	secureApi.HandleFunc("/tools/pipelength/calc", pipeH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/coil/calc", coilH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/batch/calc", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/batch/xlsx", batchH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/live", liveS.ServeWs).Methods("GET")
}

func mustSolver(cfg *config.Config) hydraulics.Solver {
	s, err := cfg.HydraulicSolver()
	if err != nil {
		log.WithError(err).Fatal("invalid solver configuration")
	}
	return s
}

func loadCatalog(ctx context.Context, cfg *config.Config, db *sql.DB) (*catalog.Set, error) {
	if cfg.Catalog.Source == config.SourcePostgres {
		if db == nil {
			return nil, errors.New("catalog source postgres needs DATABASE_URL")
		}
		return repo.NewPostgresCatalogDB(db).LoadCatalog(ctx, cfg.Catalog.Version)
	}
	return catalog.Builtin(cfg.Catalog.Version)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration error")
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = auth.InitDB(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("База не отвечает")
		}
		defer db.Close()
	}

	set, err := loadCatalog(ctx, cfg, db)
	if err != nil {
		log.WithError(err).Fatal("catalog not loaded")
	}
	log.WithFields(log.Fields{
		"source":    cfg.Catalog.Source,
		"version":   set.Version,
		"materials": len(set.Pipes.Materials()),
		"pumps":     len(set.Pumps.Labels()),
		"viscosity": cfg.ViscosityModel().Name(),
		"solver":    cfg.Solver.Method + "/" + cfg.Solver.Form,
	}).Info("catalog loaded")

	deps := Deps{Config: cfg, Catalog: set}
	if db != nil {
		if cfg.TokenKey == "" {
			log.Fatal("TOKEN_KEY environment variable is not set")
		}
		deps.Auth = &auth.Authenv{
			JWTkey: []byte(cfg.TokenKey),
			Repo:   repo.NewPostgresUserDB(db),
			Secure: cfg.TLSCert != "",
		}
	} else {
		log.Warn("DATABASE_URL not set, tools are served without authentication")
	}

	mux := mux.NewRouter()
	HandleList(mux, deps)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(log.Fields{"addr": cfg.Addr, "tls": cfg.TLSCert != ""}).Info("Starting server")
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, закрытие активных соединений")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Ошибка при остановке сервера")
	}
	log.Info("Сервер успешно остановлен")

	wg.Wait()
}
