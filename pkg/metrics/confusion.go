package metrics

import (
	"fmt"
	"io"
	"sort"
)

// ConfusionMatrix accumulates actual-versus-predicted counts over a
// fixed label set. Rows are actual labels, columns predicted labels.
type ConfusionMatrix struct {
	labels []string
	index  map[string]int
	cells  [][]int
	total  int
}

// NewConfusionMatrix creates an empty matrix over the given labels
func NewConfusionMatrix(labels []string) *ConfusionMatrix {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)

	index := make(map[string]int, len(sorted))
	cells := make([][]int, len(sorted))
	for i, label := range sorted {
		index[label] = i
		cells[i] = make([]int, len(sorted))
	}

	return &ConfusionMatrix{
		labels: sorted,
		index:  index,
		cells:  cells,
	}
}

// Add records one classified sample
func (cm *ConfusionMatrix) Add(actual, predicted string) error {
	ai, ok := cm.index[actual]
	if !ok {
		return fmt.Errorf("unknown actual label: %s", actual)
	}

	pi, ok := cm.index[predicted]
	if !ok {
		return fmt.Errorf("unknown predicted label: %s", predicted)
	}

	cm.cells[ai][pi]++
	cm.total++
	return nil
}

// Labels returns the sorted label set
func (cm *ConfusionMatrix) Labels() []string {
	return cm.labels
}

// Count returns the number of samples with the given actual label that
// were classified as predicted
func (cm *ConfusionMatrix) Count(actual, predicted string) int {
	ai, ok := cm.index[actual]
	if !ok {
		return 0
	}
	pi, ok := cm.index[predicted]
	if !ok {
		return 0
	}
	return cm.cells[ai][pi]
}

// Total returns the number of recorded samples
func (cm *ConfusionMatrix) Total() int {
	return cm.total
}

// Accuracy returns the fraction of correctly classified samples
func (cm *ConfusionMatrix) Accuracy() float64 {
	if cm.total == 0 {
		return 0
	}

	correct := 0
	for i := range cm.labels {
		correct += cm.cells[i][i]
	}

	return float64(correct) / float64(cm.total)
}

// support returns the number of samples with the given actual label
func (cm *ConfusionMatrix) support(label string) int {
	ai := cm.index[label]

	n := 0
	for _, count := range cm.cells[ai] {
		n += count
	}
	return n
}

// predictedTotal returns the number of samples classified as label
func (cm *ConfusionMatrix) predictedTotal(label string) int {
	pi := cm.index[label]

	n := 0
	for ai := range cm.labels {
		n += cm.cells[ai][pi]
	}
	return n
}

// Render writes the matrix as an aligned text table
func (cm *ConfusionMatrix) Render(w io.Writer) {
	header := "actual \\ predicted"

	firstWidth := len(header)
	cellWidth := 10
	for _, label := range cm.labels {
		if len(label) > firstWidth {
			firstWidth = len(label)
		}
		if len(label)+2 > cellWidth {
			cellWidth = len(label) + 2
		}
	}

	fmt.Fprintf(w, "%*s", firstWidth, header)
	for _, label := range cm.labels {
		fmt.Fprintf(w, "%*s", cellWidth, label)
	}
	fmt.Fprintf(w, "\n")

	for ai, actual := range cm.labels {
		fmt.Fprintf(w, "%*s", firstWidth, actual)
		for pi := range cm.labels {
			fmt.Fprintf(w, "%*d", cellWidth, cm.cells[ai][pi])
		}
		fmt.Fprintf(w, "\n")
	}
}
