// README: smoke subcommand; storage, API and throughput checks against a running deployment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"carrental/internal/config"
)

type smokeConfig struct {
	BaseURL     string
	DSN         string
	RedisAddr   string
	Timeout     time.Duration
	Concurrency int
	Duration    time.Duration
}

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type smokeCase struct {
	Name string
	Run  func(ctx context.Context, r *runner) result
}

type runner struct {
	cfg   smokeConfig
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// carID is the first car the search case saw, reused by the quote case.
	carID string
}

var sc smokeConfig

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Check a running deployment: storage, public API and search throughput",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := sc
		cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		if defaults, err := config.Load(); err == nil {
			if cfg.DSN == "" {
				cfg.DSN = defaults.DB.DSN
			}
			if cfg.RedisAddr == "" {
				cfg.RedisAddr = defaults.Redis.Addr
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		r := newRunner(cfg)
		defer r.close()
		results := r.runAll(ctx, cmd.OutOrStdout())

		fail := 0
		for _, res := range results {
			if res.Status == statusFail {
				fail++
			}
		}
		if fail > 0 {
			return fmt.Errorf("%d smoke checks failed", fail)
		}
		return nil
	},
}

func init() {
	f := smokeCmd.Flags()
	f.StringVar(&sc.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	f.StringVar(&sc.DSN, "dsn", "", "Postgres DSN, defaults to the service config")
	f.StringVar(&sc.RedisAddr, "redis", "", "Redis address, defaults to the service config")
	f.DurationVar(&sc.Timeout, "timeout", 60*time.Second, "total timeout")
	f.IntVar(&sc.Concurrency, "concurrency", 20, "workers for the search load")
	f.DurationVar(&sc.Duration, "duration", 10*time.Second, "length of the search load, 0 to skip")
	rootCmd.AddCommand(smokeCmd)
}

func newRunner(cfg smokeConfig) *runner {
	return &runner{cfg: cfg, httpc: &http.Client{Timeout: 10 * time.Second}}
}

func (r *runner) close() {
	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
}

func (r *runner) runAll(ctx context.Context, w io.Writer) []result {
	if r.cfg.DSN != "" && r.db == nil {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" && r.redis == nil {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	cases := r.cases()
	results := make([]result, 0, len(cases))
	for _, tc := range cases {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Fprintf(w, "%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Fprintf(w, " (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Fprintf(w, " - %s", res.Note)
		}
		fmt.Fprintln(w)
	}
	return results
}

var requiredTables = []string{"cars", "profiles", "admin_users", "bookings", "booking_status_events", "reviews", "notifications"}

func (r *runner) cases() []smokeCase {
	base := r.cfg.BaseURL
	return []smokeCase{
		{Name: "Postgres: connect", Run: func(ctx context.Context, r *runner) result {
			if r.db == nil {
				return result{Status: statusSkip, Note: "no dsn"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.db.Ping(ctx); err != nil {
				return result{Status: statusFail, Note: err.Error()}
			}
			return result{Status: statusPass}
		}},
		{Name: "Postgres: tables exist", Run: func(ctx context.Context, r *runner) result {
			if r.db == nil {
				return result{Status: statusSkip, Note: "no dsn"}
			}
			for _, t := range requiredTables {
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
				).Scan(&exists)
				if err != nil {
					return result{Status: statusFail, Note: err.Error()}
				}
				if !exists {
					return result{Status: statusFail, Note: "missing table: " + t}
				}
			}
			return result{Status: statusPass}
		}},
		{Name: "Redis: connect", Run: func(ctx context.Context, r *runner) result {
			if r.redis == nil {
				return result{Status: statusSkip, Note: "no redis address"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.redis.Ping(ctx).Err(); err != nil {
				return result{Status: statusFail, Note: err.Error()}
			}
			return result{Status: statusPass}
		}},
		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),
		{Name: "API: search cars", Run: func(ctx context.Context, r *runner) result {
			var body struct {
				Cars []struct {
					ID string `json:"id"`
				} `json:"cars"`
			}
			res := r.doJSON(ctx, http.MethodGet, base+"/api/cars", nil, http.StatusOK, &body)
			if res.Status == statusPass {
				res.Note = fmt.Sprintf("%d cars", len(body.Cars))
				if len(body.Cars) > 0 {
					r.carID = body.Cars[0].ID
				}
			}
			return res
		}},
		httpCase("API: bad price range -> 400", http.MethodGet, base+"/api/cars?min_price=9000&max_price=100", nil, http.StatusBadRequest),
		httpCase("API: add-on catalog", http.MethodGet, base+"/api/addons", nil, http.StatusOK),
		{Name: "API: quote first car", Run: func(ctx context.Context, r *runner) result {
			if r.carID == "" {
				return result{Status: statusSkip, Note: "no cars listed"}
			}
			var quote struct {
				GrandTotal int64 `json:"grand_total"`
			}
			res := r.doJSON(ctx, http.MethodPost, base+"/api/cars/"+r.carID+"/quote",
				map[string]any{"duration": 3, "distance_km": 500}, http.StatusOK, &quote)
			if res.Status == statusPass {
				res.Note = rupees(quote.GrandTotal)
			}
			return res
		}},
		httpCase("API: checkout without token -> 401", http.MethodPost, base+"/api/bookings", map[string]any{}, http.StatusUnauthorized),
		httpCase("API: admin stats without token -> 401", http.MethodGet, base+"/api/admin/stats", nil, http.StatusUnauthorized),
		{Name: "Perf: search throughput", Run: func(ctx context.Context, r *runner) result {
			return searchLoad(ctx, r, base+"/api/cars?q=a&seating=5")
		}},
	}
}

func httpCase(name, method, url string, body any, want int) smokeCase {
	return smokeCase{Name: name, Run: func(ctx context.Context, r *runner) result {
		return r.doJSON(ctx, method, url, body, want, nil)
	}}
}

func (r *runner) doJSON(ctx context.Context, method, url string, body any, want int, out any) result {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return result{Status: statusFail, Note: err.Error()}
		}
		reader = strings.NewReader(string(raw))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return result{Status: statusFail, Note: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return result{Status: statusFail, Note: err.Error()}
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode != want {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want %d", resp.StatusCode, want)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return result{Status: statusFail, Latency: latency, Note: "decode: " + err.Error()}
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
}

// searchLoad hammers url with cfg.Concurrency workers for cfg.Duration and
// reports requests per second. Any non-200 answer fails the case.
func searchLoad(ctx context.Context, r *runner, url string) result {
	if r.cfg.Duration <= 0 {
		return result{Status: statusSkip, Note: "duration=0"}
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Duration)
	defer cancel()

	var ok, bad atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				if err != nil {
					bad.Add(1)
					return
				}
				resp, err := r.httpc.Do(req)
				if err != nil {
					if ctx.Err() == nil {
						bad.Add(1)
					}
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					ok.Add(1)
				} else {
					bad.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	rps := float64(ok.Load()) / r.cfg.Duration.Seconds()
	note := fmt.Sprintf("%.1f req/s, %d errors", rps, bad.Load())
	if bad.Load() > 0 {
		return result{Status: statusFail, Note: note}
	}
	return result{Status: statusPass, Note: note}
}
