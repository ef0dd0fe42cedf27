package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "transcribe") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_StageChange(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, "slice") {
		t.Error("first stage should log")
	}
	if s.ShouldLog(0, "slice") {
		t.Error("same stage and percent should not log again")
	}
	if !s.ShouldLog(0, "  transcribe ") {
		t.Error("different stage should log")
	}
	if s.lastStage != "transcribe" {
		t.Errorf("lastStage = %q, want transcribe", s.lastStage)
	}
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog(0, "transcribe") {
		t.Fatal("0% should log")
	}
	if s.ShouldLog(5, "transcribe") {
		t.Fatal("5% stays in the first bucket")
	}
	if !s.ShouldLog(12, "transcribe") {
		t.Fatal("12% enters a new bucket")
	}
	if !s.ShouldLog(100, "transcribe") {
		t.Fatal("100% should log")
	}
	if s.ShouldLog(100, "transcribe") {
		t.Fatal("repeated 100% should not log")
	}
	if s.ShouldLog(-1, "transcribe") {
		t.Fatal("unknown percent on same stage should not log")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "transcribe")
	s.Reset()
	if s.lastStage != "" || s.lastBucket != -1 {
		t.Fatalf("reset did not clear state: %+v", s)
	}
}
