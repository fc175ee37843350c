package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/route"
	"github.com/MrEthical07/goGuard/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// clientState is one simulated browser: its own slot namespace in Redis.
type clientState struct {
	store *session.Store
	role  route.Role
}

func main() {
	var (
		clients     = flag.Int("clients", 10000, "number of browser sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (navigate + login/logout)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gg", "session key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	guard := goGuard.NewGuard(nil)

	states := make([]clientState, *clients)
	fmt.Printf("seeding %d sessions...\n", *clients)
	startSeed := time.Now()
	for i := 0; i < *clients; i++ {
		storage := session.NewRedisStorage(client, *prefix, "lt-"+strconv.Itoa(i), time.Hour)
		st := clientState{
			store: session.NewStore(storage, session.Options{}),
			role:  roleFor(i),
		}
		states[i] = st
		if err := seed(ctx, storage, st, i); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	navigateStats := runNavigatePhase(ctx, guard, states, *ops, *concurrency)
	lifecycleStats := runLifecyclePhase(ctx, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("navigate", navigateStats)
	printStats("login/logout", lifecycleStats)
}

// seed writes a spread of session shapes: patients, doctors, unknown roles,
// corrupt records and signed-out clients.
func seed(ctx context.Context, storage session.Storage, st clientState, i int) error {
	switch i % 5 {
	case 3:
		return storage.Set(ctx, session.DefaultUserKey, "{corrupt-json")
	case 4:
		return nil
	}
	return st.store.Save(ctx, "tok-"+strconv.Itoa(i), &session.User{
		ID:       strconv.Itoa(i),
		Username: "user" + strconv.Itoa(i),
		Role:     st.role,
	})
}

func roleFor(i int) route.Role {
	switch i % 5 {
	case 0:
		return route.RolePatient
	case 1:
		return route.RoleDoctor
	case 2:
		return "nurse"
	default:
		return route.RolePatient
	}
}

var targets = []string{
	route.NameRoot,
	route.NameLogin,
	route.NamePatient,
	route.NameDoctor,
	route.NameDashboard,
	"no-such-page",
}

func runNavigatePhase(ctx context.Context, guard *goGuard.Guard, states []clientState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		loops     int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				st := &states[r.Intn(len(states))]
				target := targets[r.Intn(len(targets))]

				t0 := time.Now()
				s, err := st.store.Load(ctx)
				if err == nil {
					_, err = guard.Resolve(s, target, 0)
				}
				d := time.Since(t0)
				switch {
				case errors.Is(err, goGuard.ErrRedirectLoop):
					atomic.AddInt64(&loops, 1)
				case err != nil:
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	stats := computeStats(total, latencies, failures)
	stats.loops = loops
	return stats
}

func runLifecyclePhase(ctx context.Context, states []clientState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
		locks     = make([]sync.Mutex, len(states))
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				st := &states[idx]

				// One browser navigates serially.
				locks[idx].Lock()
				t0 := time.Now()
				err := st.store.Save(ctx, "tok-"+strconv.Itoa(i), &session.User{ID: strconv.Itoa(idx), Role: st.role})
				if err == nil {
					err = st.store.Clear(ctx)
				}
				d := time.Since(t0)
				locks[idx].Unlock()

				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	loops    int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d loops=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.loops,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
