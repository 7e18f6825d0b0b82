package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	accountsapp "campus-parking/internal/accounts/application"
	accounts "campus-parking/internal/accounts/domain"
	accountsmem "campus-parking/internal/accounts/infrastructure/memory"
	accountspg "campus-parking/internal/accounts/infrastructure/postgres"
	accountshttp "campus-parking/internal/accounts/interfaces/http"
	"campus-parking/internal/audit"
	"campus-parking/internal/auth"
	"campus-parking/internal/eventing"
	"campus-parking/internal/observability/metrics"
	parkingapp "campus-parking/internal/parking/application"
	parking "campus-parking/internal/parking/domain"
	parkingmem "campus-parking/internal/parking/infrastructure/memory"
	parkingpg "campus-parking/internal/parking/infrastructure/postgres"
	parkinghttp "campus-parking/internal/parking/interfaces/http"
	paymentapp "campus-parking/internal/payment/application"
	payment "campus-parking/internal/payment/domain"
	"campus-parking/internal/payment/infrastructure/bkpay"
	paymentmem "campus-parking/internal/payment/infrastructure/memory"
	paymentpg "campus-parking/internal/payment/infrastructure/postgres"
	paymenthttp "campus-parking/internal/payment/interfaces/http"
	provisioningapp "campus-parking/internal/provisioning/application"
	provisioninghttp "campus-parking/internal/provisioning/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	var (
		slotStore    parking.SlotStore
		sessionStore parking.SessionStore
		zoneRates    parking.ZoneRates
		atomicRunner parking.Atomic
		zoneWriter   provisioningapp.ZoneWriter
		slotWriter   provisioningapp.SlotWriter
		userRepo     accounts.UserRepository
		txnRepo      payment.TransactionRepository
		auditor      audit.Logger
	)

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}

		metrics.RegisterDBMetrics(db, logger)

		slots := parkingpg.NewSlotStore(db)
		sessions := parkingpg.NewSessionStore(db)
		zones := parkingpg.NewZoneRates(db)
		slotStore, sessionStore, zoneRates = slots, sessions, zones
		atomicRunner = parkingpg.NewTxRunner(db)
		zoneWriter, slotWriter = zones, slots
		userRepo = accountspg.NewUserRepository(db)
		txnRepo, err = paymentpg.NewRepository(db)
		if err != nil {
			logger.Fatalf("transaction repository error: %v", err)
		}
		auditor = audit.NewRepository(db)
	} else {
		logger.Printf("DATABASE_URL not set, running with in-memory stores")
		store := parkingmem.NewStore()
		slotStore, sessionStore, zoneRates, atomicRunner = store, store, store, store
		zoneWriter, slotWriter = store, store
		users := accountsmem.NewUserRepository()
		seedDemoData(store, users, logger)
		userRepo = users
		txnRepo = paymentmem.NewRepository()
	}

	bus := eventing.NewInMemoryBus()
	eventing.On(bus, func(_ context.Context, _ parkingapp.SessionOpened) error {
		metrics.SessionOpened()
		return nil
	})
	eventing.On(bus, func(_ context.Context, closed parkingapp.SessionClosed) error {
		metrics.SessionClosed(closed.Fee.TotalFee)
		return nil
	})
	eventing.On(bus, func(_ context.Context, changed parkingapp.SlotStatusChanged) error {
		logger.Printf("slot status changed: slot=%s %s -> %s", changed.SlotID, changed.PreviousStatus, changed.NewStatus)
		return nil
	})

	processor, err := parkingapp.NewProcessor(
		slotStore, sessionStore, zoneRates, atomicRunner, logger,
		parkingapp.WithPublisher(bus),
		parkingapp.WithFallbackRate(cfg.FallbackHourlyRate),
		parkingapp.WithStoreTimeout(cfg.StoreTimeout),
	)
	if err != nil {
		logger.Fatalf("processor error: %v", err)
	}
	sensorHandler, err := parkinghttp.NewSensorHandler(processor, logger)
	if err != nil {
		logger.Fatalf("sensor handler error: %v", err)
	}

	monitor, err := parkingapp.NewMonitorService(slotStore, zoneRates)
	if err != nil {
		logger.Fatalf("monitor service error: %v", err)
	}
	parkingHandler, err := parkinghttp.NewParkingHandler(slotStore, sessionStore, monitor)
	if err != nil {
		logger.Fatalf("parking handler error: %v", err)
	}

	authService, err := accountsapp.NewAuthService(userRepo, []byte(cfg.JWTSecret), accountsapp.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		logger.Fatalf("auth service error: %v", err)
	}
	authHandler, err := accountshttp.NewAuthHandler(authService)
	if err != nil {
		logger.Fatalf("auth handler error: %v", err)
	}

	gatewayURL := cfg.BKPayURL
	if gatewayURL == "" {
		gatewayURL = localBaseURL(cfg.HTTPAddr) + "/api/mock/bkpay"
	}
	gateway, err := bkpay.NewClient(gatewayURL, bkpay.WithAPIKey(cfg.BKPayAPIKey))
	if err != nil {
		logger.Fatalf("bkpay client error: %v", err)
	}
	var paymentOpts []paymentapp.Option
	if auditor != nil {
		paymentOpts = append(paymentOpts, paymentapp.WithAuditor(auditor))
	}
	paymentService, err := paymentapp.NewService(txnRepo, sessionStore, gateway, logger, paymentOpts...)
	if err != nil {
		logger.Fatalf("payment service error: %v", err)
	}
	paymentHandler, err := paymenthttp.NewHandler(paymentService, logger)
	if err != nil {
		logger.Fatalf("payment handler error: %v", err)
	}
	mockGateway := paymenthttp.NewMockGateway(logger,
		paymenthttp.WithDelay(cfg.BKPayMockDelay),
		paymenthttp.WithSuccessRate(cfg.BKPayMockSuccessRate),
	)

	var provisionOpts []provisioningapp.Option
	if auditor != nil {
		provisionOpts = append(provisionOpts, provisioningapp.WithAuditor(auditor))
	}
	provisionService, err := provisioningapp.NewService(zoneWriter, slotWriter, logger, provisionOpts...)
	if err != nil {
		logger.Fatalf("provisioning service error: %v", err)
	}
	provisionHandler, err := provisioninghttp.NewHandler(provisionService)
	if err != nil {
		logger.Fatalf("provisioning handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics", "/api/auth/login", "/api/parking/sensors/update"},
		[]string{"/api/mock/"},
	)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	sensorAuth := auth.NewSensorKeyMiddleware([]byte(cfg.SensorAPIKey))

	mux := http.NewServeMux()
	mux.Handle("/api/parking/sensors/update", sensorAuth.Wrap(sensorHandler))
	mux.Handle("/api/parking/", parkingHandler)
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/payment/", paymentHandler)
	mux.Handle("/api/provisioning/", provisionHandler)
	mux.Handle("/api/mock/bkpay", mockGateway)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL          string
	HTTPAddr             string
	JWTSecret            string
	SensorAPIKey         string
	TokenTTL             time.Duration
	FallbackHourlyRate   int64
	StoreTimeout         time.Duration
	BKPayURL             string
	BKPayAPIKey          string
	BKPayMockDelay       time.Duration
	BKPayMockSuccessRate float64
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:          getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:             getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:            getenvDefault("JWT_SECRET", "campus-parking-dev-secret"),
		SensorAPIKey:         getenvDefault("SENSOR_API_KEY", "dev-sensor-key"),
		TokenTTL:             getenvDuration("TOKEN_TTL", 12*time.Hour),
		FallbackHourlyRate:   int64(getenvIntDefault("FALLBACK_HOURLY_RATE", 5000)),
		StoreTimeout:         getenvDuration("STORE_TIMEOUT", 5*time.Second),
		BKPayURL:             getenvDefault("BKPAY_URL", ""),
		BKPayAPIKey:          getenvDefault("BKPAY_API_KEY", ""),
		BKPayMockDelay:       getenvDuration("BKPAY_MOCK_DELAY", 2*time.Second),
		BKPayMockSuccessRate: getenvFloatDefault("BKPAY_MOCK_SUCCESS_RATE", 0.8),
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func localBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}

// seedDemoData provisions a small campus layout so the in-memory mode
// is usable out of the box.
func seedDemoData(store *parkingmem.Store, users *accountsmem.UserRepository, logger *log.Logger) {
	ctx := context.Background()
	zones := []parking.Zone{
		{ID: "zone-a", Name: "Library Lot A", HourlyRate: 5000},
		{ID: "zone-b", Name: "Dorm Lot B", HourlyRate: 3000},
	}
	for _, zone := range zones {
		if err := store.PutZone(ctx, zone); err != nil {
			logger.Fatalf("seed zone %s: %v", zone.ID, err)
		}
	}
	slots := []parking.Slot{
		{ID: "slot-a-01", SensorID: "S-001", Label: "A-01", ZoneID: "zone-a", Status: parking.StatusFree},
		{ID: "slot-a-02", SensorID: "S-002", Label: "A-02", ZoneID: "zone-a", Status: parking.StatusFree},
		{ID: "slot-a-03", SensorID: "S-003", Label: "A-03", ZoneID: "zone-a", Status: parking.StatusUnknown},
		{ID: "slot-b-01", SensorID: "S-101", Label: "B-01", ZoneID: "zone-b", Status: parking.StatusFree},
		{ID: "slot-b-02", SensorID: "S-102", Label: "B-02", ZoneID: "zone-b", Status: parking.StatusFree},
	}
	for _, slot := range slots {
		if err := store.PutSlot(ctx, slot); err != nil {
			logger.Fatalf("seed slot %s: %v", slot.ID, err)
		}
	}
	demoUsers := []accounts.User{
		{ID: "user-student-1", SSOID: "sv-2110001", FullName: "Tran Thi Sinh Vien", Role: "student"},
		{ID: "user-faculty-1", SSOID: "gv-0001", FullName: "Le Van Giang Vien", Role: "faculty"},
		{ID: "user-staff-1", SSOID: "nv-0001", FullName: "Pham Van Nhan Vien", Role: "staff"},
		{ID: "user-admin-1", SSOID: "admin-0001", FullName: "Quan Tri Vien", Role: "admin"},
	}
	for i := range demoUsers {
		if err := users.Save(ctx, &demoUsers[i]); err != nil {
			logger.Fatalf("seed user %s: %v", demoUsers[i].ID, err)
		}
	}
	logger.Printf("seeded %d zones, %d slots, %d users", len(zones), len(slots), len(demoUsers))
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
