// Command loadtest drives conversation traffic against a running server.
// Each pair is a patient and a health worker controller sharing one room;
// both sides send -messages messages and the run reports how many frames
// each side's log ended up with.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sehatlink/sehat/internal/model"
	"github.com/sehatlink/sehat/pkg/chatclient"
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8003", "server base URL")
		pairs    = flag.Int("pairs", 5, "concurrent patient/health-worker pairs")
		messages = flag.Int("messages", 20, "messages sent per side")
		interval = flag.Duration("interval", 50*time.Millisecond, "delay between sends")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()

	var wg sync.WaitGroup
	results := make(chan pairResult, *pairs)
	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- runPair(ctx, *baseURL, n, *messages, *interval)
		}(i)
	}
	wg.Wait()
	close(results)

	var sent, logged int
	for res := range results {
		sent += res.sent
		logged += res.logged
		if res.err != nil {
			log.Printf("pair %d: %v", res.pair, res.err)
		}
	}

	fmt.Printf("pairs=%d sent=%d logged=%d elapsed=%s\n", *pairs, sent, logged, time.Since(start).Round(time.Millisecond))
}

type pairResult struct {
	pair   int
	sent   int
	logged int
	err    error
}

func runPair(ctx context.Context, baseURL string, pair, messages int, interval time.Duration) pairResult {
	patientID := uuid.New()
	helperID := uuid.New()

	patient := chatclient.NewController(model.RolePatient, baseURL)
	helper := chatclient.NewController(model.RoleHelper, baseURL)

	patient.StartWithRoom(ctx, patientID, helperID, "load helper")
	helper.StartWithRoom(ctx, patientID, helperID, "load patient")
	defer patient.End()
	defer helper.End()

	if err := waitOpen(ctx, patient); err != nil {
		return pairResult{pair: pair, err: fmt.Errorf("patient connect: %w", err)}
	}
	if err := waitOpen(ctx, helper); err != nil {
		return pairResult{pair: pair, err: fmt.Errorf("health worker connect: %w", err)}
	}

	res := pairResult{pair: pair}
	for i := 0; i < messages; i++ {
		if err := patient.SendText(ctx, fmt.Sprintf("patient %d message %d", pair, i)); err == nil {
			res.sent++
		}
		if err := helper.SendText(ctx, fmt.Sprintf("worker %d message %d", pair, i)); err == nil {
			res.sent++
		}

		select {
		case <-ctx.Done():
			res.err = ctx.Err()
			return res
		case <-time.After(interval):
		}
	}

	// Give the relay a moment to deliver the tail before counting.
	time.Sleep(500 * time.Millisecond)
	res.logged = len(patient.Log()) + len(helper.Log())
	return res
}

func waitOpen(ctx context.Context, c *chatclient.Controller) error {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		switch c.State() {
		case chatclient.StateOpen:
			return nil
		case chatclient.StateClosed:
			return fmt.Errorf("session closed before opening")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return fmt.Errorf("timed out waiting for open")
}
