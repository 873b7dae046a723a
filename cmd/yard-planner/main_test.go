package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/yard-planner/internal/config"
)

var (
	testConfigPath    = filepath.Join("..", "..", "test", "test_config.yaml")
	testInventoryPath = filepath.Join("..", "..", "test", "inventory.csv")
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		logging  config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", logging: config.LoggingConfig{}},
		{name: "console warn", logging: config.LoggingConfig{Level: "warn", Format: "console"}},
		{name: "override wins", logging: config.LoggingConfig{Level: "bogus"}, override: "debug"},
		{name: "invalid level", logging: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "invalid format", logging: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.logging, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestInitializeLoggerOutputFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "planner.log")

	logger, err := initializeLogger(config.LoggingConfig{Level: "info", OutputFile: logFile}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected log line in file, got %q", string(data))
	}
}

func TestOccupancyCommand(t *testing.T) {
	out, err := runCLI(t, "occupancy", "--config", testConfigPath, "-i", testInventoryPath, "--output-format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var report struct {
		Blocks []struct {
			Block   string `json:"block"`
			UsedTEU int    `json:"usedTEU"`
		} `json:"blocks"`
		TotalTEU int `json:"totalTEU"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if report.TotalTEU != 15 {
		t.Fatalf("expected 15 TEU, got %d", report.TotalTEU)
	}
	if len(report.Blocks) != 5 || report.Blocks[0].Block != "A1" {
		t.Fatalf("unexpected blocks %+v", report.Blocks)
	}
}

func TestOccupancyCommandCSVFromConfig(t *testing.T) {
	out, err := runCLI(t, "occupancy", "--config", testConfigPath, "-i", testInventoryPath, "--sort", "percent")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "A1") || !strings.Contains(out, ",") {
		t.Fatalf("expected CSV occupancy output, got %q", out)
	}
}

func TestPlanCommand(t *testing.T) {
	out, err := runCLI(t, "plan", "--config", testConfigPath, "-i", testInventoryPath,
		"--total", "10", "--twenty-percent", "50", "--reefer", "2", "--berth", "1a", "--output-format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var plan struct {
		Count20 int `json:"count20"`
		Count40 int `json:"count40"`
		Lines   []struct {
			Block string `json:"block"`
		} `json:"lines"`
	}
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if plan.Count20 != 5 || plan.Count40 != 5 {
		t.Fatalf("expected 5/5 split, got %d/%d", plan.Count20, plan.Count40)
	}
	if len(plan.Lines) != 2 || plan.Lines[0].Block != "I1" || plan.Lines[1].Block != "A1" {
		t.Fatalf("unexpected lines %+v", plan.Lines)
	}
}

func TestPlanCommandRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown berth", args: []string{"--total", "5", "--berth", "7"}},
		{name: "zero total", args: []string{"--total", "0"}},
		{name: "reefers above total", args: []string{"--total", "2", "--reefer", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"plan", "--config", testConfigPath, "-i", testInventoryPath}, tt.args...)
			if _, err := runCLI(t, args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMapCommand(t *testing.T) {
	out, err := runCLI(t, "map", "--config", testConfigPath, "-i", testInventoryPath, "-b", "A1", "--ship", "Maersk Alabama", "--output-format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}

	var maps struct {
		Block  string `json:"block"`
		Placed int    `json:"placed"`
	}
	if err := json.Unmarshal([]byte(out), &maps); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if maps.Block != "A1" || maps.Placed != 2 {
		t.Fatalf("unexpected map %+v", maps)
	}

	if _, err := runCLI(t, "map", "--config", testConfigPath, "-i", testInventoryPath, "-b", "Q7"); err == nil {
		t.Fatal("expected error for block without dimensions")
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing inventory flag", args: []string{"occupancy", "--config", testConfigPath}},
		{name: "missing inventory file", args: []string{"occupancy", "--config", testConfigPath, "-i", "does-not-exist.csv"}},
		{name: "missing explicit config", args: []string{"occupancy", "--config", "does-not-exist.yaml", "-i", testInventoryPath}},
		{name: "bad sort", args: []string{"occupancy", "--config", testConfigPath, "-i", testInventoryPath, "--sort", "ship"}},
		{name: "bad output format", args: []string{"occupancy", "--config", testConfigPath, "-i", testInventoryPath, "--output-format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "yard-planner dev" {
		t.Fatalf("unexpected version output %q", out)
	}
}
