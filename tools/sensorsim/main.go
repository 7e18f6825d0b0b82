// Command sensorsim simulates a fleet of parking sensors posting
// occupancy reports against the ingest endpoint.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type simConfig struct {
	BaseURL         string   `yaml:"base_url"`
	APIKey          string   `yaml:"api_key"`
	IntervalSeconds int      `yaml:"interval_seconds"`
	FlipRate        float64  `yaml:"flip_rate"`
	SensorIDs       []string `yaml:"sensors"`
}

func (c simConfig) interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func loadSimConfig(path string) (simConfig, error) {
	cfg := simConfig{
		BaseURL:  "http://127.0.0.1:8080",
		APIKey:   "dev-sensor-key",
		FlipRate: 0.3,
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

type reportPayload struct {
	SensorID  string `json:"sensor_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func main() {
	configPath := flag.String("config", "", "path to a YAML simulator config")
	baseURL := flag.String("url", "", "override the ingest base url")
	apiKey := flag.String("key", "", "override the sensor api key")
	count := flag.Int("count", 0, "generate this many synthetic sensors when the config lists none")
	flag.Parse()

	cfg, err := loadSimConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *apiKey != "" {
		cfg.APIKey = *apiKey
	}
	if len(cfg.SensorIDs) == 0 {
		n := *count
		if n <= 0 {
			n = 5
		}
		for i := 1; i <= n; i++ {
			cfg.SensorIDs = append(cfg.SensorIDs, fmt.Sprintf("S-%03d", i))
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("simulating %d sensors against %s every %s", len(cfg.SensorIDs), cfg.BaseURL, cfg.interval())

	group, ctx := errgroup.WithContext(ctx)
	for _, sensorID := range cfg.SensorIDs {
		sensorID := sensorID
		group.Go(func() error {
			return runSensor(ctx, cfg, sensorID)
		})
	}
	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatalf("simulator stopped: %v", err)
	}
}

func runSensor(ctx context.Context, cfg simConfig, sensorID string) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(len(sensorID))))
	client := &http.Client{Timeout: 10 * time.Second}
	occupied := rng.Float64() < 0.5

	ticker := time.NewTicker(cfg.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if rng.Float64() < cfg.FlipRate {
			occupied = !occupied
		}
		status := "free"
		if occupied {
			status = "occupied"
		}
		if err := postReport(ctx, client, cfg, sensorID, status); err != nil {
			log.Printf("sensor %s: %v", sensorID, err)
		}
	}
}

func postReport(ctx context.Context, client *http.Client, cfg simConfig, sensorID, status string) error {
	payload, err := json.Marshal(reportPayload{
		SensorID:  sensorID,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/api/parking/sensors/update", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingest returned %d", resp.StatusCode)
	}
	return nil
}
