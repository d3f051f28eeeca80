package metrics

import (
	"fmt"
	"io"
)

// ClassMetrics contains precision/recall figures for one class
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarizes classifier quality per class, in the
// style of the usual precision/recall table: one row per class plus
// accuracy, macro and weighted averages.
type ClassificationReport struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Report computes the classification report from a confusion matrix.
// Classes with no predicted (or no actual) samples score 0, not NaN.
func Report(cm *ConfusionMatrix) *ClassificationReport {
	report := &ClassificationReport{
		Accuracy: cm.Accuracy(),
		Total:    cm.Total(),
	}

	for _, label := range cm.Labels() {
		tp := cm.Count(label, label)
		support := cm.support(label)
		predicted := cm.predictedTotal(label)

		metrics := ClassMetrics{Label: label, Support: support}

		if predicted > 0 {
			metrics.Precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			metrics.Recall = float64(tp) / float64(support)
		}
		if metrics.Precision+metrics.Recall > 0 {
			metrics.F1 = 2 * metrics.Precision * metrics.Recall /
				(metrics.Precision + metrics.Recall)
		}

		report.Classes = append(report.Classes, metrics)
	}

	n := float64(len(report.Classes))
	total := float64(report.Total)

	for _, c := range report.Classes {
		report.MacroAvg.Precision += c.Precision / n
		report.MacroAvg.Recall += c.Recall / n
		report.MacroAvg.F1 += c.F1 / n

		if total > 0 {
			weight := float64(c.Support) / total
			report.WeightedAvg.Precision += c.Precision * weight
			report.WeightedAvg.Recall += c.Recall * weight
			report.WeightedAvg.F1 += c.F1 * weight
		}
	}

	report.MacroAvg.Label = "macro avg"
	report.MacroAvg.Support = report.Total
	report.WeightedAvg.Label = "weighted avg"
	report.WeightedAvg.Support = report.Total

	return report
}

// Render writes the report as an aligned text table
func (r *ClassificationReport) Render(w io.Writer) {
	width := 12
	for _, c := range r.Classes {
		if len(c.Label) > width {
			width = len(c.Label)
		}
	}

	fmt.Fprintf(w, "%*s  precision  recall  f1-score  support\n", width, "")
	fmt.Fprintf(w, "\n")

	for _, c := range r.Classes {
		fmt.Fprintf(w, "%*s  %9.3f  %6.3f  %8.3f  %7d\n",
			width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%*s  %9s  %6s  %8.3f  %7d\n",
		width, "accuracy", "", "", r.Accuracy, r.Total)
	fmt.Fprintf(w, "%*s  %9.3f  %6.3f  %8.3f  %7d\n",
		width, r.MacroAvg.Label, r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	fmt.Fprintf(w, "%*s  %9.3f  %6.3f  %8.3f  %7d\n",
		width, r.WeightedAvg.Label, r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)
}
