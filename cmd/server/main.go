// Command server starts the VidTube API HTTP service.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/AdityaBhosale22/vidtube/internal/api"
	"github.com/AdityaBhosale22/vidtube/internal/auth"
	"github.com/AdityaBhosale22/vidtube/internal/observability/logging"
	"github.com/AdityaBhosale22/vidtube/internal/observability/metrics"
	"github.com/AdityaBhosale22/vidtube/internal/server"
	"github.com/AdityaBhosale22/vidtube/internal/storage"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	dataPath := flag.String("data", "", "path to JSON datastore")
	mode := flag.String("mode", "", "server runtime mode (development or production)")
	accessSecret := flag.String("access-secret", "", "HMAC secret for access tokens")
	refreshSecret := flag.String("refresh-secret", "", "HMAC secret for refresh tokens")
	accessTTL := flag.Duration("access-ttl", 0, "access token lifetime")
	refreshTTL := flag.Duration("refresh-ttl", 0, "refresh token lifetime")
	tokenStoreDriver := flag.String("token-store", "", "refresh token store driver (memory, postgres, or redis)")
	tokenPostgresDSN := flag.String("token-postgres-dsn", "", "Postgres DSN for the refresh token store")
	tokenRedisAddr := flag.String("token-redis-addr", "", "Redis address for the refresh token store")
	tokenRedisAddrs := flag.String("token-redis-addrs", "", "comma separated Redis addresses for the refresh token store")
	tokenRedisUsername := flag.String("token-redis-username", "", "Redis username for the refresh token store")
	tokenRedisPassword := flag.String("token-redis-password", "", "Redis password for the refresh token store")
	tokenRedisMasterName := flag.String("token-redis-master-name", "", "Redis sentinel master name for the refresh token store")
	tokenRedisPoolSize := flag.Int("token-redis-pool-size", 0, "maximum Redis connections for the refresh token store")
	cookieSecure := flag.String("cookie-secure", "", "session cookie Secure mode (auto or always)")
	cookieSameSite := flag.String("cookie-samesite", "", "session cookie SameSite mode (strict or lax)")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	corsOrigins := flag.String("cors-origins", "", "comma separated origins allowed to call the API")
	globalRPS := flag.Float64("rate-global-rps", 0, "global request rate limit in requests per second")
	globalBurst := flag.Int("rate-global-burst", 0, "global rate limit burst allowance")
	loginLimit := flag.Int("rate-login-limit", 0, "maximum credential attempts per window for a single IP")
	loginWindow := flag.Duration("rate-login-window", 0, "window for counting credential attempts")
	trustForwarded := flag.Bool("rate-trust-forwarded-headers", false, "trust proxy-provided client IP headers")
	trustedProxies := flag.String("rate-trusted-proxies", "", "comma separated CIDR blocks or IPs of trusted proxies")
	rateRedisAddr := flag.String("rate-redis-addr", "", "Redis address for distributed credential throttling")
	rateRedisPassword := flag.String("rate-redis-password", "", "Redis password for distributed credential throttling")
	rateRedisTimeout := flag.Duration("rate-redis-timeout", 0, "timeout for Redis rate limit operations")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("VIDTUBE_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("VIDTUBE_LOG_FORMAT")),
	})
	auditLogger := logging.WithComponent(logger, "audit")
	recorder := metrics.Default()

	serverMode := modeValue(*mode, os.Getenv("VIDTUBE_MODE"))
	listenAddr := resolveListenAddr(*addr, serverMode, os.Getenv("VIDTUBE_ADDR"))

	accessKey, refreshKey, err := resolveTokenSecrets(
		firstNonEmpty(*accessSecret, os.Getenv("VIDTUBE_ACCESS_SECRET")),
		firstNonEmpty(*refreshSecret, os.Getenv("VIDTUBE_REFRESH_SECRET")),
		serverMode,
	)
	if err != nil {
		logger.Error("failed to resolve token secrets", "error", err)
		os.Exit(1)
	}
	if serverMode != "production" && (os.Getenv("VIDTUBE_ACCESS_SECRET") == "" && *accessSecret == "") {
		logger.Warn("using ephemeral token secrets, sessions will not survive restarts")
	}

	codec, err := auth.NewCodec(accessKey, refreshKey)
	if err != nil {
		logger.Error("failed to initialise token codec", "error", err)
		os.Exit(1)
	}

	dataFile := resolveDataPath(*dataPath, os.Getenv("VIDTUBE_DATA"))
	store, err := storage.NewStorage(dataFile)
	if err != nil {
		logger.Error("failed to open datastore", "error", err, "path", dataFile)
		os.Exit(1)
	}

	tokenStoreCfg, err := resolveTokenStoreConfig(
		*tokenStoreDriver, os.Getenv("VIDTUBE_TOKEN_STORE"),
		firstNonEmpty(*tokenPostgresDSN, os.Getenv("VIDTUBE_TOKEN_POSTGRES_DSN"), os.Getenv("DATABASE_URL")),
		firstNonEmpty(*tokenRedisAddr, os.Getenv("VIDTUBE_TOKEN_REDIS_ADDR")),
	)
	if err != nil {
		logger.Error("failed to resolve refresh token store", "error", err)
		os.Exit(1)
	}

	refreshLifetime := resolveDuration(*refreshTTL, "VIDTUBE_REFRESH_TTL", 0)

	var (
		tokenStore  auth.RefreshTokenStore
		tokenCloser func(context.Context) error
	)
	switch tokenStoreCfg.Driver {
	case "memory":
		tokenStore = auth.NewMemoryRefreshTokenStore()
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pgStore, err := auth.NewPostgresRefreshTokenStore(ctx, tokenStoreCfg.PostgresDSN)
		cancel()
		if err != nil {
			logger.Error("failed to open refresh token store", "error", err)
			os.Exit(1)
		}
		tokenStore = pgStore
		tokenCloser = pgStore.Close
	case "redis":
		redisStore, err := auth.NewRedisRefreshTokenStore(auth.RedisRefreshTokenConfig{
			Addr:       tokenStoreCfg.RedisAddr,
			Addrs:      splitAndTrim(firstNonEmpty(*tokenRedisAddrs, os.Getenv("VIDTUBE_TOKEN_REDIS_ADDRS"))),
			Username:   firstNonEmpty(*tokenRedisUsername, os.Getenv("VIDTUBE_TOKEN_REDIS_USERNAME")),
			Password:   firstNonEmpty(*tokenRedisPassword, os.Getenv("VIDTUBE_TOKEN_REDIS_PASSWORD")),
			MasterName: firstNonEmpty(*tokenRedisMasterName, os.Getenv("VIDTUBE_TOKEN_REDIS_MASTER_NAME")),
			PoolSize:   resolveInt(*tokenRedisPoolSize, "VIDTUBE_TOKEN_REDIS_POOL_SIZE"),
			TTL:        refreshLifetime,
		})
		if err != nil {
			logger.Error("failed to open refresh token store", "error", err)
			os.Exit(1)
		}
		tokenStore = redisStore
		tokenCloser = func(ctx context.Context) error { return redisStore.Close() }
	default:
		logger.Error("unsupported refresh token store driver", "driver", tokenStoreCfg.Driver)
		os.Exit(1)
	}

	var serviceOpts []auth.ServiceOption
	if ttl := resolveDuration(*accessTTL, "VIDTUBE_ACCESS_TTL", 0); ttl > 0 {
		serviceOpts = append(serviceOpts, auth.WithAccessTTL(ttl))
	}
	if refreshLifetime > 0 {
		serviceOpts = append(serviceOpts, auth.WithRefreshTTL(refreshLifetime))
	}
	tokens := auth.NewService(codec, tokenStore, store, serviceOpts...)

	handler := api.NewHandler(store, tokens)
	handler.Metrics = recorder
	handler.Logger = logging.WithComponent(logger, "api")
	handler.SessionCookiePolicy, err = resolveCookiePolicy(
		firstNonEmpty(*cookieSecure, os.Getenv("VIDTUBE_COOKIE_SECURE")),
		firstNonEmpty(*cookieSameSite, os.Getenv("VIDTUBE_COOKIE_SAMESITE")),
		serverMode,
	)
	if err != nil {
		logger.Error("invalid cookie policy", "error", err)
		os.Exit(1)
	}

	rateCfg := server.RateLimitConfig{
		GlobalRPS:             resolveFloat(*globalRPS, "VIDTUBE_RATE_GLOBAL_RPS"),
		GlobalBurst:           resolveInt(*globalBurst, "VIDTUBE_RATE_GLOBAL_BURST"),
		LoginLimit:            resolveInt(*loginLimit, "VIDTUBE_RATE_LOGIN_LIMIT"),
		LoginWindow:           resolveDuration(*loginWindow, "VIDTUBE_RATE_LOGIN_WINDOW", time.Minute),
		TrustForwardedHeaders: resolveBool(*trustForwarded, "VIDTUBE_RATE_TRUST_FORWARDED_HEADERS"),
		TrustedProxies:        splitAndTrim(firstNonEmpty(*trustedProxies, os.Getenv("VIDTUBE_RATE_TRUSTED_PROXIES"))),
		RedisAddr:             firstNonEmpty(*rateRedisAddr, os.Getenv("VIDTUBE_RATE_REDIS_ADDR")),
		RedisPassword:         firstNonEmpty(*rateRedisPassword, os.Getenv("VIDTUBE_RATE_REDIS_PASSWORD")),
		RedisTimeout:          resolveDuration(*rateRedisTimeout, "VIDTUBE_RATE_REDIS_TIMEOUT", 2*time.Second),
	}

	tlsCfg := server.TLSConfig{
		CertFile: firstNonEmpty(*tlsCert, os.Getenv("VIDTUBE_TLS_CERT")),
		KeyFile:  firstNonEmpty(*tlsKey, os.Getenv("VIDTUBE_TLS_KEY")),
	}

	srv, err := server.New(handler, server.Config{
		Addr:        listenAddr,
		TLS:         tlsCfg,
		RateLimit:   rateCfg,
		CORS:        server.CORSConfig{AllowedOrigins: splitAndTrim(firstNonEmpty(*corsOrigins, os.Getenv("VIDTUBE_CORS_ORIGINS")))},
		Logger:      logger,
		AuditLogger: auditLogger,
		Metrics:     recorder,
	})
	if err != nil {
		logger.Error("failed to initialise server", "error", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("VidTube API listening", "addr", listenAddr, "mode", serverMode)
	if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
		logger.Info("TLS enabled", "cert_file", tlsCfg.CertFile)
	}
	logger.Info("metrics endpoint available", "path", "/metrics")

	runErr := srv.Run(runCtx)
	stop()
	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		logger.Error("server error", "error", runErr)
	}

	if tokenCloser != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := tokenCloser(ctx); err != nil {
			logger.Warn("failed to close refresh token store", "error", err)
		}
		cancel()
	}

	logger.Info("server stopped")
}

type tokenStoreConfig struct {
	Driver      string
	PostgresDSN string
	RedisAddr   string
}

func resolveTokenStoreConfig(flagDriver, envDriver, postgresDSN, redisAddr string) (tokenStoreConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(flagDriver))
	if driver == "" {
		driver = strings.ToLower(strings.TrimSpace(envDriver))
	}
	if driver == "" {
		switch {
		case strings.TrimSpace(redisAddr) != "":
			driver = "redis"
		case strings.TrimSpace(postgresDSN) != "":
			driver = "postgres"
		default:
			driver = "memory"
		}
	}

	switch driver {
	case "memory":
		return tokenStoreConfig{Driver: "memory"}, nil
	case "postgres":
		dsn := strings.TrimSpace(postgresDSN)
		if dsn == "" {
			return tokenStoreConfig{}, fmt.Errorf("postgres token store selected without DSN")
		}
		return tokenStoreConfig{Driver: "postgres", PostgresDSN: dsn}, nil
	case "redis":
		addr := strings.TrimSpace(redisAddr)
		if addr == "" {
			return tokenStoreConfig{}, fmt.Errorf("redis token store selected without address")
		}
		return tokenStoreConfig{Driver: "redis", RedisAddr: addr}, nil
	default:
		return tokenStoreConfig{}, fmt.Errorf("unsupported refresh token store driver %q", driver)
	}
}

func resolveTokenSecrets(access, refresh, mode string) ([]byte, []byte, error) {
	access = strings.TrimSpace(access)
	refresh = strings.TrimSpace(refresh)
	if access != "" && refresh != "" {
		if access == refresh {
			return nil, nil, fmt.Errorf("access and refresh secrets must differ")
		}
		return []byte(access), []byte(refresh), nil
	}
	if mode == "production" {
		return nil, nil, fmt.Errorf("production mode requires VIDTUBE_ACCESS_SECRET and VIDTUBE_REFRESH_SECRET")
	}
	// Development fallback so the server can start without configuration.
	accessKey, err := randomSecret()
	if err != nil {
		return nil, nil, err
	}
	refreshKey, err := randomSecret()
	if err != nil {
		return nil, nil, err
	}
	if access != "" {
		accessKey = []byte(access)
	}
	if refresh != "" {
		refreshKey = []byte(refresh)
	}
	return accessKey, refreshKey, nil
}

func randomSecret() ([]byte, error) {
	var buffer [32]byte
	if _, err := rand.Read(buffer[:]); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return []byte(hex.EncodeToString(buffer[:])), nil
}

func resolveCookiePolicy(secureMode, sameSite, mode string) (api.SessionCookiePolicy, error) {
	policy := api.DefaultSessionCookiePolicy()

	switch strings.ToLower(strings.TrimSpace(secureMode)) {
	case "", "auto":
		policy.SecureMode = api.SessionCookieSecureAuto
	case "always":
		policy.SecureMode = api.SessionCookieSecureAlways
	default:
		return policy, fmt.Errorf("unsupported cookie secure mode %q", secureMode)
	}
	if mode == "production" && policy.SecureMode == api.SessionCookieSecureAuto {
		policy.SecureMode = api.SessionCookieSecureAlways
	}

	switch strings.ToLower(strings.TrimSpace(sameSite)) {
	case "", "strict":
		policy.SameSite = http.SameSiteStrictMode
	case "lax":
		policy.SameSite = http.SameSiteLaxMode
	default:
		return policy, fmt.Errorf("unsupported cookie samesite mode %q", sameSite)
	}

	return policy, nil
}

func resolveListenAddr(flagValue, mode, envAddr string) string {
	listenAddr := strings.TrimSpace(flagValue)
	if listenAddr == "" {
		listenAddr = strings.TrimSpace(envAddr)
	}
	if listenAddr == "" {
		listenAddr = defaultListenForMode(mode)
	}
	return listenAddr
}

func modeValue(flagMode, envMode string) string {
	mode := strings.ToLower(strings.TrimSpace(flagMode))
	if mode == "" {
		mode = strings.ToLower(strings.TrimSpace(envMode))
	}
	if mode == "" {
		mode = "development"
	}
	return mode
}

func defaultListenForMode(mode string) string {
	if mode == "production" {
		return ":80"
	}
	return ":8080"
}

func resolveDataPath(flagValue, envValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := strings.TrimSpace(envValue); env != "" {
		return env
	}
	return "data/store.json"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitAndTrim(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func resolveFloat(flagValue float64, envKey string) float64 {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.ParseFloat(strings.TrimSpace(env), 64); err == nil {
			return value
		}
	}
	return 0
}

func resolveInt(flagValue int, envKey string) int {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := strconv.Atoi(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return 0
}

func resolveDuration(flagValue time.Duration, envKey string, fallback time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		if value, err := time.ParseDuration(env); err == nil {
			return value
		}
	}
	if fallback > 0 {
		return fallback
	}
	return 0
}

func resolveBool(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}
	if env, ok := os.LookupEnv(envKey); ok {
		if value, err := strconv.ParseBool(strings.TrimSpace(env)); err == nil {
			return value
		}
	}
	return false
}
