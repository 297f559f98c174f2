package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/internal/jobs"
	"github.com/yeisme/pdfvault/pkg/metrics"
	"github.com/yeisme/pdfvault/pkg/scheduler"
)

type fakeDB struct {
	schemaErr error
	pingErr   error
	calls     int
}

func (f *fakeDB) EnsureSchema(context.Context) error {
	f.calls++
	return f.schemaErr
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func TestCheckSchemaSetsGauge(t *testing.T) {
	healthy := &fakeDB{}
	if err := jobs.CheckSchema(context.Background(), healthy); err != nil {
		t.Fatalf("CheckSchema failed: %v", err)
	}

	if got := testutil.ToFloat64(metrics.DBHealthy); got != 1 {
		t.Errorf("Expected gauge 1, got %v", got)
	}

	broken := &fakeDB{pingErr: errors.New("database is locked")}
	if err := jobs.CheckSchema(context.Background(), broken); err == nil {
		t.Fatal("Expected ping failure")
	}

	if got := testutil.ToFloat64(metrics.DBHealthy); got != 0 {
		t.Errorf("Expected gauge 0, got %v", got)
	}
}

func TestRegisterJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	defer func() { _ = sched.Stop() }()

	cfg := configs.JobsConfig{Enabled: true, SchemaCheckInterval: time.Hour}

	if err := jobs.RegisterJobs(context.Background(), nil, cfg, &fakeDB{}); err == nil {
		t.Error("Expected nil scheduler to fail")
	}

	if err := jobs.RegisterJobs(context.Background(), sched, cfg, &fakeDB{}); err != nil {
		t.Fatalf("RegisterJobs failed: %v", err)
	}

	sched.Start()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info, err := sched.GetJobInfoByName(jobs.JobSchemaCheck); err == nil && info.Runs > 0 {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("schema check job never ran")
}
