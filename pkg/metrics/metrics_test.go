package metrics

import (
	"math"
	"strings"
	"testing"
)

// buildMatrix records a known confusion:
//
//	actual ham:  40 predicted ham, 10 predicted spam
//	actual spam: 5 predicted ham, 45 predicted spam
func buildMatrix(t *testing.T) *ConfusionMatrix {
	t.Helper()

	cm := NewConfusionMatrix([]string{"spam", "ham"})

	add := func(actual, predicted string, n int) {
		for i := 0; i < n; i++ {
			if err := cm.Add(actual, predicted); err != nil {
				t.Fatalf("Add(%s, %s) failed: %v", actual, predicted, err)
			}
		}
	}

	add("ham", "ham", 40)
	add("ham", "spam", 10)
	add("spam", "ham", 5)
	add("spam", "spam", 45)

	return cm
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestConfusionMatrixCounts(t *testing.T) {
	cm := buildMatrix(t)

	testCases := []struct {
		actual    string
		predicted string
		expected  int
	}{
		{"ham", "ham", 40},
		{"ham", "spam", 10},
		{"spam", "ham", 5},
		{"spam", "spam", 45},
	}

	for _, tc := range testCases {
		if got := cm.Count(tc.actual, tc.predicted); got != tc.expected {
			t.Errorf("Count(%s, %s) = %d, expected %d", tc.actual, tc.predicted, got, tc.expected)
		}
	}

	if cm.Total() != 100 {
		t.Errorf("Total() = %d, expected 100", cm.Total())
	}
}

func TestConfusionMatrixAccuracy(t *testing.T) {
	cm := buildMatrix(t)

	if !almostEqual(cm.Accuracy(), 0.85) {
		t.Errorf("Accuracy() = %f, expected 0.85", cm.Accuracy())
	}
}

func TestConfusionMatrixUnknownLabel(t *testing.T) {
	cm := NewConfusionMatrix([]string{"spam", "ham"})

	if err := cm.Add("other", "ham"); err == nil {
		t.Error("Expected error for unknown actual label")
	}
	if err := cm.Add("ham", "other"); err == nil {
		t.Error("Expected error for unknown predicted label")
	}
}

func TestConfusionMatrixLabelsSorted(t *testing.T) {
	cm := NewConfusionMatrix([]string{"spam", "ham"})

	labels := cm.Labels()
	if len(labels) != 2 || labels[0] != "ham" || labels[1] != "spam" {
		t.Errorf("Labels() = %v, expected [ham spam]", labels)
	}
}

func TestReport(t *testing.T) {
	cm := buildMatrix(t)
	report := Report(cm)

	if len(report.Classes) != 2 {
		t.Fatalf("Expected 2 classes, got %d", len(report.Classes))
	}

	// Sorted label order: ham first
	ham, spam := report.Classes[0], report.Classes[1]

	// ham: tp=40, predicted ham=45, actual ham=50
	if !almostEqual(ham.Precision, 40.0/45.0) {
		t.Errorf("ham precision = %f, expected %f", ham.Precision, 40.0/45.0)
	}
	if !almostEqual(ham.Recall, 0.8) {
		t.Errorf("ham recall = %f, expected 0.8", ham.Recall)
	}
	if ham.Support != 50 {
		t.Errorf("ham support = %d, expected 50", ham.Support)
	}

	// spam: tp=45, predicted spam=55, actual spam=50
	if !almostEqual(spam.Precision, 45.0/55.0) {
		t.Errorf("spam precision = %f, expected %f", spam.Precision, 45.0/55.0)
	}
	if !almostEqual(spam.Recall, 0.9) {
		t.Errorf("spam recall = %f, expected 0.9", spam.Recall)
	}

	expectedF1 := 2 * spam.Precision * spam.Recall / (spam.Precision + spam.Recall)
	if !almostEqual(spam.F1, expectedF1) {
		t.Errorf("spam F1 = %f, expected %f", spam.F1, expectedF1)
	}

	if !almostEqual(report.Accuracy, 0.85) {
		t.Errorf("report accuracy = %f, expected 0.85", report.Accuracy)
	}

	// Weighted recall equals accuracy
	if !almostEqual(report.WeightedAvg.Recall, report.Accuracy) {
		t.Errorf("weighted recall %f != accuracy %f", report.WeightedAvg.Recall, report.Accuracy)
	}

	// Macro averages
	if !almostEqual(report.MacroAvg.Recall, (0.8+0.9)/2) {
		t.Errorf("macro recall = %f, expected %f", report.MacroAvg.Recall, (0.8+0.9)/2)
	}
}

func TestReportNoPredictions(t *testing.T) {
	cm := NewConfusionMatrix([]string{"spam", "ham"})

	// Everything predicted ham: spam precision has a zero denominator
	for i := 0; i < 10; i++ {
		cm.Add("ham", "ham")
	}
	for i := 0; i < 5; i++ {
		cm.Add("spam", "ham")
	}

	report := Report(cm)
	spam := report.Classes[1]

	if spam.Precision != 0 || spam.Recall != 0 || spam.F1 != 0 {
		t.Errorf("Expected zeroed metrics for never-predicted class, got %+v", spam)
	}
	if math.IsNaN(spam.Precision) || math.IsNaN(spam.F1) {
		t.Error("Metrics must not be NaN")
	}
}

func TestReportEmpty(t *testing.T) {
	cm := NewConfusionMatrix([]string{"spam", "ham"})
	report := Report(cm)

	if report.Accuracy != 0 || report.Total != 0 {
		t.Errorf("Expected zero report for empty matrix, got %+v", report)
	}
}

func TestRenderConfusionMatrix(t *testing.T) {
	cm := buildMatrix(t)

	var sb strings.Builder
	cm.Render(&sb)
	out := sb.String()

	for _, want := range []string{"actual \\ predicted", "ham", "spam", "40", "45"} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered matrix missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport(t *testing.T) {
	cm := buildMatrix(t)
	report := Report(cm)

	var sb strings.Builder
	report.Render(&sb)
	out := sb.String()

	for _, want := range []string{"precision", "recall", "f1-score", "support", "accuracy", "macro avg", "weighted avg", "ham", "spam"} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered report missing %q:\n%s", want, out)
		}
	}
}
