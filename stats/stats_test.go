package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestRollingAverage(t *testing.T) {
	tr := NewTraining()

	if avg := tr.AddEpisode(4, 10, 1.0); avg != 4 {
		t.Fatalf("first rolling average = %v, want 4", avg)
	}
	if avg := tr.AddEpisode(8, 12, 0.9); avg != 6 {
		t.Fatalf("second rolling average = %v, want 6", avg)
	}

	// The window must slide once more than rollingWindow episodes exist.
	for i := 0; i < rollingWindow; i++ {
		tr.AddEpisode(10, 1, 0.5)
	}
	if avg := tr.AvgScores()[tr.Episodes()-1]; avg != 10 {
		t.Fatalf("rolling average after a full window of 10s = %v, want 10", avg)
	}
}

func TestBestAvgTracksMaximum(t *testing.T) {
	tr := NewTraining()
	tr.AddEpisode(5, 1, 1)
	tr.AddEpisode(1, 1, 1)
	if tr.BestAvg() != 5 {
		t.Fatalf("best average = %v, want 5", tr.BestAvg())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	tr := NewTraining()
	tr.AddEpisode(3, 7, 0.8)

	scores := tr.Scores()
	scores[0] = 99
	if tr.Scores()[0] != 3 {
		t.Fatal("mutating a returned slice leaked into the history")
	}
}

func TestRecentLossAvg(t *testing.T) {
	tr := NewTraining()
	if got := tr.RecentLossAvg(10); got != 0 {
		t.Fatalf("loss average with no losses = %v, want 0", got)
	}
	tr.AddLoss(1)
	tr.AddLoss(2)
	tr.AddLoss(3)
	if got := tr.RecentLossAvg(2); got != 2.5 {
		t.Fatalf("recent loss average = %v, want 2.5", got)
	}
	if got := tr.RecentLossAvg(100); got != 2 {
		t.Fatalf("truncated loss average = %v, want 2", got)
	}
}

func TestSeedScoresRestoresHistory(t *testing.T) {
	tr := NewTraining()
	tr.SeedScores([]int{1, 2, 3}, []float64{0.5})

	if tr.Episodes() != 3 {
		t.Fatalf("seeded episodes = %d, want 3", tr.Episodes())
	}
	if len(tr.Losses()) != 1 {
		t.Fatalf("seeded losses = %d, want 1", len(tr.Losses()))
	}
	if len(tr.Epsilons()) != 0 || len(tr.EpisodeLengths()) != 0 {
		t.Fatal("seeding fabricated epsilon or length entries")
	}
}

func TestSaveLog(t *testing.T) {
	tr := NewTraining()
	tr.AddEpisode(2, 30, 0.7)
	tr.AddLoss(0.25)

	path := filepath.Join(t.TempDir(), "log.json")
	if err := tr.SaveLog(path, 1); err != nil {
		t.Fatalf("SaveLog: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
	if decoded["episode"].(float64) != 1 {
		t.Fatalf("episode field = %v, want 1", decoded["episode"])
	}
}

func TestMovingAverage(t *testing.T) {
	got := movingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("movingAverage[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if movingAverage(nil, 3) != nil {
		t.Fatal("moving average of an empty series should be nil")
	}
}

func TestWritePlots(t *testing.T) {
	tr := NewTraining()
	for i := 0; i < 5; i++ {
		tr.AddEpisode(i, i*10, 1.0-float64(i)/10)
		tr.AddLoss(float64(i))
	}

	dir := t.TempDir()
	if err := tr.WritePlots(dir, 5); err != nil {
		t.Fatalf("WritePlots: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "training_progress_ep5.html")); err != nil {
		t.Fatalf("expected plot file: %v", err)
	}
}
