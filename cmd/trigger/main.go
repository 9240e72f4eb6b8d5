// Command trigger calls the daily accrual endpoint; it is meant for an
// external cron when no worker runs.
package main

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"seedworks/internal/config"
	"seedworks/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.App.JobToken == "" {
		log.Fatal("JOB_TOKEN is required")
	}

	client := resty.New().
		SetTimeout(5 * time.Minute).
		SetRetryCount(cfg.Worker.TriggerMaxRetries).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	var result struct {
		Message string         `json:"message"`
		Result  map[string]any `json:"result"`
		Error   string         `json:"error"`
	}

	resp, err := client.R().
		SetHeader(handlers.JobTokenHeader, cfg.App.JobToken).
		SetResult(&result).
		SetError(&result).
		Post(cfg.Worker.TriggerURL)
	if err != nil {
		log.Fatalf("Accrual request failed: %v", err)
	}
	if resp.IsError() {
		log.Fatalf("Accrual failed with %s: %s", resp.Status(), result.Error)
	}

	log.Printf("%s: %v", result.Message, result.Result)
}
