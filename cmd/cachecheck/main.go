// Command cachecheck requests a turf's availability grid twice against a
// running server and confirms the grid landed in Redis between the calls.
//
//	go run ./cmd/cachecheck -turf 1 -date 2025-06-01
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"turfbook/internal/shared/config"
	"turfbook/internal/shared/constants"
	"turfbook/pkg/cache"

	"github.com/joho/godotenv"
)

type CheckResult struct {
	Attempt      string
	StatusCode   int
	ResponseTime time.Duration
	DataSize     int
	Cached       bool
	Error        string
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	baseURL := flag.String("base", fmt.Sprintf("http://localhost:%s%s", cfg.Port, cfg.GetAPIBasePath()), "API base URL")
	turfID := flag.Int64("turf", 1, "turf id")
	date := flag.String("date", time.Now().In(cfg.Location()).Format("2006-01-02"), "day to check (YYYY-MM-DD)")
	flag.Parse()

	ctx := context.Background()
	rdb, err := cache.Connect(ctx, cache.NewConfigFromRedisConfig(cfg.Redis))
	if err != nil {
		log.Fatalf("❌ Redis connection failed: %v", err)
	}
	defer rdb.Close()
	fmt.Println("✅ Redis connection: OK")

	key := constants.BuildAvailabilityKey(*turfID, *date)
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Fatalf("❌ Could not clear %s: %v", key, err)
	}

	endpoint := fmt.Sprintf("%s/turfs/%d/availability?date=%s", *baseURL, *turfID, *date)
	client := &http.Client{Timeout: 30 * time.Second}

	var results []CheckResult
	for _, attempt := range []string{"cold", "warm"} {
		r := fetch(client, endpoint, attempt)
		n, err := rdb.Exists(ctx, key).Result()
		if err != nil {
			r.Error = err.Error()
		}
		r.Cached = n == 1
		results = append(results, r)
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Printf("\n🔍 %s\n", endpoint)
	for _, r := range results {
		icon := "✅"
		if r.Error != "" || r.StatusCode != http.StatusOK {
			icon = "❌"
		}
		fmt.Printf("   %s %-4s HTTP %d %v (%d bytes) cached=%t %s\n",
			icon, r.Attempt, r.StatusCode, r.ResponseTime, r.DataSize, r.Cached, r.Error)
	}

	if len(results) == 2 && results[0].Cached && results[1].ResponseTime > 0 {
		improvement := float64(results[0].ResponseTime-results[1].ResponseTime) / float64(results[0].ResponseTime) * 100
		fmt.Printf("   📈 Warm request %.1f%% faster\n", improvement)
		ttl, _ := rdb.TTL(ctx, key).Result()
		fmt.Printf("   ⏱  %s expires in %v\n", key, ttl.Round(time.Second))
		return
	}

	log.Fatalf("❌ Availability grid was not cached under %s", key)
}

func fetch(client *http.Client, url, attempt string) CheckResult {
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return CheckResult{Attempt: attempt, ResponseTime: time.Since(start), Error: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	r := CheckResult{
		Attempt:      attempt,
		StatusCode:   resp.StatusCode,
		ResponseTime: time.Since(start),
		DataSize:     len(body),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
