package main

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, err := loadSettings(func(string) string { return "" })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.port != "8080" || s.servers != 3 {
			t.Errorf("unexpected defaults: port=%s servers=%d", s.port, s.servers)
		}
		if s.fake.StepDuration != 0 {
			t.Errorf("expected read-driven progression, got step %v", s.fake.StepDuration)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		env := map[string]string{
			"PORT":            "9090",
			"MOCK_SERVERS":    "5",
			"MOCK_STEP":       "2s",
			"MOCK_JOB_STATES": "pending,running,error",
			"MOCK_CLIENT_ID":  "demo",
		}
		s, err := loadSettings(func(k string) string { return env[k] })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.port != "9090" || s.servers != 5 {
			t.Errorf("unexpected settings: port=%s servers=%d", s.port, s.servers)
		}
		if s.fake.StepDuration != 2*time.Second {
			t.Errorf("expected 2s step, got %v", s.fake.StepDuration)
		}
		if want := []string{"pending", "running", "error"}; !reflect.DeepEqual(s.fake.JobStates, want) {
			t.Errorf("expected states %v, got %v", want, s.fake.JobStates)
		}
		if s.fake.ClientID != "demo" || s.fake.ClientSecret != "fake-secret" {
			t.Errorf("unexpected credentials %s/%s", s.fake.ClientID, s.fake.ClientSecret)
		}
	})

	for _, tt := range []struct {
		key, value, want string
	}{
		{"MOCK_SERVERS", "zero", "MOCK_SERVERS"},
		{"MOCK_SERVERS", "0", "positive integer"},
		{"MOCK_STEP", "soon", "MOCK_STEP"},
	} {
		t.Run("invalid "+tt.key+"="+tt.value, func(t *testing.T) {
			_, err := loadSettings(func(k string) string {
				if k == tt.key {
					return tt.value
				}
				return ""
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
