package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"claimbot/internal/config"
	"claimbot/internal/repository"
)

func TestScheduleRosterDisabled(t *testing.T) {
	scheduler, err := scheduleRoster(config.Config{}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("scheduleRoster: %v", err)
	}
	if scheduler != nil {
		t.Fatal("expected no scheduler without a roster schedule")
	}
}

func TestScheduleRosterRegistersJobs(t *testing.T) {
	cfg := config.Config{RosterInterval: time.Hour, RosterDailyAt: "08:00", RosterLimit: 5}
	scheduler, err := scheduleRoster(cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("scheduleRoster: %v", err)
	}
	if scheduler == nil || scheduler.Jobs() != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %v", scheduler)
	}
}

func TestScheduleRosterRejectsBadTime(t *testing.T) {
	if _, err := scheduleRoster(config.Config{RosterDailyAt: "25:00"}, nil, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid daily time")
	}
}

func TestUsersCommandPrintsRoster(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "claims.db")
	db, err := repository.NewDB(dbPath, zap.NewNop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	repo := repository.NewUserRepository(db)
	for _, id := range []string{"11", "22", "33"} {
		if _, err := repo.Create(context.Background(), id, "user"+id); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	sqlDB.Close()

	viper.Set(config.KeyDatabaseURL, dbPath)
	t.Cleanup(func() { viper.Set(config.KeyDatabaseURL, "") })

	cmd := newUsersCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--limit", "2"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("users command: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "Displaying 2 of 3 users\n") {
		t.Fatalf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "1 11 user11") || strings.Contains(got, "user33") {
		t.Fatalf("unexpected roster output: %q", got)
	}
}
