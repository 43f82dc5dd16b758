package split

import (
	"errors"
	"testing"
)

func TestSplit_FullBudget(t *testing.T) {
	// Seed scenario: 400 rows, 5 splits of 12 test rows each.
	s := New(5, 12)
	splits, err := s.Split(400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(splits) != 5 {
		t.Fatalf("expected 5 splits, got %d", len(splits))
	}

	totalTest := 0
	for i, sp := range splits {
		totalTest += sp.TestEnd - sp.TrainEnd
		if sp.TestEnd-sp.TrainEnd != 12 {
			t.Errorf("split %d: expected test size 12, got %d", i, sp.TestEnd-sp.TrainEnd)
		}
		if i > 0 && splits[i-1].TestEnd != sp.TrainEnd {
			t.Errorf("split %d: test slices not contiguous", i)
		}
	}
	if totalTest != 60 {
		t.Errorf("expected 60 test rows in total, got %d", totalTest)
	}
	if splits[len(splits)-1].TestEnd != 400 {
		t.Errorf("expected final split to end at 400, got %d", splits[len(splits)-1].TestEnd)
	}
}

func TestSplit_TrainPrecedesTest(t *testing.T) {
	s := New(3, 10)
	splits, err := s.Split(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, sp := range splits {
		if sp.TrainEnd < 1 {
			t.Errorf("split %d: empty training window", i)
		}
		if sp.TrainEnd >= sp.TestEnd {
			t.Errorf("split %d: train end %d not before test end %d", i, sp.TrainEnd, sp.TestEnd)
		}
		if sp.TestEnd > 100 {
			t.Errorf("split %d: index %d beyond frame", i, sp.TestEnd)
		}
	}
}

func TestSplit_ShrinksBelowNaturalBudget(t *testing.T) {
	// 50 rows cannot fit 5 splits of 12; expect fewer splits, last ending at 50.
	s := New(5, 12)
	splits, err := s.Split(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(splits) >= 5 {
		t.Errorf("expected fewer than 5 splits, got %d", len(splits))
	}
	if last := splits[len(splits)-1]; last.TestEnd != 50 {
		t.Errorf("expected final test end 50, got %d", last.TestEnd)
	}
	if splits[0].TrainEnd < 1 {
		t.Errorf("expected non-empty first training window")
	}
}

func TestSplit_InsufficientData(t *testing.T) {
	s := New(5, 12)
	_, err := s.Split(12)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	s := New(0, 12)
	if _, err := s.Split(100); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSplit_MinimumViableFrame(t *testing.T) {
	// test_size+1 rows is the smallest frame that yields one split.
	s := New(5, 12)
	splits, err := s.Split(13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(splits) != 1 {
		t.Fatalf("expected 1 split, got %d", len(splits))
	}
	if splits[0].TrainEnd != 1 || splits[0].TestEnd != 13 {
		t.Errorf("expected split (1, 13), got (%d, %d)", splits[0].TrainEnd, splits[0].TestEnd)
	}
}
