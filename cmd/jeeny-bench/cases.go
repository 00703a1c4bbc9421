package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jeeny/internal/geo"
	"jeeny/internal/types"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

// Downtown Amman; every placement around it must stay inside the region.
var amman = types.Point{Lat: 31.9566, Lng: 35.9457}

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingDB},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables exist", Run: tablesExist},
		{Name: "Migration: fare rates seeded", Run: ratesSeeded},
		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK, nil),
		httpCase("API: metrics exposed", http.MethodGet, base+"/metrics", nil, http.StatusOK, nil),
		// Quotes
		httpCase("Quote: VIP coordinates", http.MethodPost, base+"/api/quotes", map[string]any{
			"start":     "31.9566,35.9457",
			"end":       "31.9700,35.9100",
			"car_class": "vip",
		}, http.StatusOK, expectCarClass("vip")),
		httpCase("Quote: unknown class degrades", http.MethodPost, base+"/api/quotes", map[string]any{
			"start":     "31.9566,35.9457",
			"end":       "31.9700,35.9100",
			"car_class": "Luxury Plus",
		}, http.StatusOK, expectWarning),
		httpCase("Quote: out of region -> 422", http.MethodPost, base+"/api/quotes", map[string]any{
			"start": "31.9566,35.9457",
			"end":   "30.0444,31.2357",
		}, http.StatusUnprocessableEntity, nil),
		httpCase("Quote: missing end -> 400", http.MethodPost, base+"/api/quotes", map[string]any{
			"start": "31.9566,35.9457",
		}, http.StatusBadRequest, nil),
		// Drivers
		httpCase("Driver: placed inside region", http.MethodPost, base+"/api/drivers", map[string]any{
			"start": amman.String(),
		}, http.StatusOK, expectDriverInRegion),
		// Places
		httpCase("Places: save coordinate", http.MethodPost, base+"/api/places", map[string]any{
			"name":  "bench-home",
			"value": amman.String(),
		}, http.StatusCreated, nil),
		httpCase("Places: list", http.MethodGet, base+"/api/places", nil, http.StatusOK, nil),
		// Chat
		httpCase("Chat: greeting", http.MethodPost, base+"/api/chat", map[string]any{
			"message": "مرحبا",
		}, http.StatusOK, nil),
		{
			Name: "Chat: session persisted in Redis",
			Run: func(ctx context.Context, r *Runner) Result {
				return chatSession(ctx, r, base+"/api/chat")
			},
		},
		// Load
		{
			Name: "Load: concurrent chat sessions",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentChats(ctx, r, base+"/api/chat")
			},
		},
		{
			Name: "Load: driver placement throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/drivers", map[string]any{"start": amman.String()})
			},
		},
	}
}

func pingDB(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: statusSkip, Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, s := range splitSQL(string(sql)) {
		if _, err := r.db.Exec(ctx, s); err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
	}
	return Result{Status: statusPass}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "db not configured"}
	}
	sql, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, t := range extractTables(string(sql)) {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: statusPass}
}

func ratesSeeded(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "db not configured"}
	}
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM fare_rates WHERE active").Scan(&n); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if n == 0 {
		return Result{Status: statusFail, Note: "no active fare_rates row"}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("active=%d", n)}
}

// bodyCheck inspects a decoded JSON response; an empty string means OK.
type bodyCheck func(body map[string]any) string

func httpCase(name, method, url string, body any, wantStatus int, check bodyCheck) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			status, decoded, err := r.doJSON(ctx, method, url, body)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if status != wantStatus {
				return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, wantStatus)}
			}
			if check != nil {
				if msg := check(decoded); msg != "" {
					return Result{Status: statusFail, Latency: latency, Note: msg}
				}
			}
			return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

func (r *Runner) doJSON(ctx context.Context, method, url string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var decoded map[string]any
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded, nil
}

func expectCarClass(want string) bodyCheck {
	return func(body map[string]any) string {
		q, _ := body["quote"].(map[string]any)
		if got, _ := q["car_class"].(string); got != want {
			return fmt.Sprintf("car_class=%q want %q", got, want)
		}
		return ""
	}
}

func expectWarning(body map[string]any) string {
	if w, _ := body["warning"].(string); w == "" {
		return "missing warning"
	}
	if msg := expectCarClass("standard")(body); msg != "" {
		return msg
	}
	return ""
}

func expectDriverInRegion(body map[string]any) string {
	d, _ := body["driver"].(map[string]any)
	pos, _ := d["position"].(map[string]any)
	lat, _ := pos["lat"].(float64)
	lng, _ := pos["lng"].(float64)
	p := types.Point{Lat: lat, Lng: lng}
	if !geo.DefaultRegion.Contains(p) {
		return "driver outside region: " + p.String()
	}
	if km := geo.HaversineKm(amman, p); km > 2 {
		return fmt.Sprintf("driver %.2f km away", km)
	}
	return ""
}

// chatSession asks for a trip and, when a quote comes back, checks the
// session key in Redis carries a TTL.
func chatSession(ctx context.Context, r *Runner, url string) Result {
	sid := uuid.NewString()
	start := time.Now()
	status, body, err := r.doJSON(ctx, http.MethodPost, url, map[string]any{
		"session_id": sid,
		"message":    "بدي تاكسي من الدوار السابع للعبدلي",
	})
	latency := time.Since(start)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	if status != http.StatusOK {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	}
	if _, ok := body["quote"]; !ok {
		return Result{Status: statusSkip, Latency: latency, Note: "assistant did not quote; intent=" + fmt.Sprint(body["intent"])}
	}
	if r.redis == nil {
		return Result{Status: statusSkip, Latency: latency, Note: "redis not configured"}
	}
	ttl, err := r.redis.TTL(ctx, "session:"+sid+":trip").Result()
	if err != nil {
		return Result{Status: statusFail, Latency: latency, Note: err.Error()}
	}
	if ttl <= 0 {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("ttl=%s", ttl)}
	}
	return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("ttl=%s", ttl.Round(time.Second))}
}

// concurrentChats sends one greeting per goroutine without a session id and
// expects every response to carry a distinct minted id.
func concurrentChats(ctx context.Context, r *Runner, url string) Result {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  = make(map[string]struct{})
		errs int
	)
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, err := r.doJSON(ctx, http.MethodPost, url, map[string]any{"message": "مرحبا"})
			mu.Lock()
			defer mu.Unlock()
			if err != nil || status != http.StatusOK {
				errs++
				return
			}
			if id, _ := body["session_id"].(string); id != "" {
				ids[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	if errs > 0 || len(ids) != r.cfg.Concurrency {
		return Result{Status: statusFail, Note: fmt.Sprintf("distinct=%d errors=%d", len(ids), errs)}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("distinct=%d", len(ids))}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.doJSON(ctx, http.MethodPost, url, payload)
				if err != nil || status >= 500 {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(sql string) []string {
	matches := createTableRe.FindAllStringSubmatch(sql, -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
