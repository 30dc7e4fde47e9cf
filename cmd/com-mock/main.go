// Command com-mock serves a simulated Compute Ops Management API for local
// runs of comctl.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vpatelsj/comops/internal/fakecom"
)

// settings holds the simulator knobs read from the environment
type settings struct {
	port    string
	servers int
	fake    *fakecom.Config
}

func loadSettings(getenv func(string) string) (*settings, error) {
	s := &settings{port: "8080", servers: 3, fake: fakecom.DefaultConfig()}

	if v := getenv("PORT"); v != "" {
		s.port = v
	}
	if v := getenv("MOCK_SERVERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MOCK_SERVERS %q: must be a positive integer", v)
		}
		s.servers = n
	}
	if v := getenv("MOCK_STEP"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MOCK_STEP %q: %w", v, err)
		}
		s.fake.StepDuration = d
	}
	// Comma separated raw states, e.g. "pending,running,error"
	if v := getenv("MOCK_JOB_STATES"); v != "" {
		s.fake.JobStates = strings.Split(v, ",")
	}
	if v := getenv("MOCK_CLIENT_ID"); v != "" {
		s.fake.ClientID = v
	}
	if v := getenv("MOCK_CLIENT_SECRET"); v != "" {
		s.fake.ClientSecret = v
	}
	return s, nil
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	s, err := loadSettings(os.Getenv)
	if err != nil {
		logger.Fatal("Invalid settings", zap.Error(err))
	}

	fake := fakecom.New(s.fake)
	demo := fake.SeedDemo(s.servers)

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           fake.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Starting mock Compute Ops Management API",
		zap.String("addr", srv.Addr),
		zap.String("tokenPath", fakecom.TokenPath),
		zap.String("clientId", s.fake.ClientID),
		zap.String("group", demo.Group.Name),
		zap.Int("servers", s.servers),
		zap.Strings("jobStates", s.fake.JobStates),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
