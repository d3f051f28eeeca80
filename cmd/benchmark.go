package cmd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamlet-ml/hamlet/pkg/config"
	"github.com/hamlet-ml/hamlet/pkg/dataset"
	"github.com/hamlet-ml/hamlet/pkg/learning"
)

var (
	benchmarkInput      string
	benchmarkConfig     string
	benchmarkModelPath  string
	benchmarkRuns       int
	benchmarkConcurrent int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Performance benchmark and analysis",
	Long:  `Run classification throughput benchmarks over a labeled dataset`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkRuns < 1 {
			return fmt.Errorf("runs must be greater than 0")
		}
		if benchmarkConcurrent < 1 {
			return fmt.Errorf("concurrent must be greater than 0")
		}

		// Load configuration
		cfg, err := config.LoadConfig(benchmarkConfig)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		if benchmarkModelPath != "" {
			cfg.Model.File.ModelPath = benchmarkModelPath
		}

		// Load dataset
		records, err := dataset.Load(benchmarkInput, &cfg.Dataset)
		if err != nil {
			return fmt.Errorf("failed to load dataset: %v", err)
		}

		// Create classifier and load trained state
		classifier, err := learning.NewClassifier(cfg)
		if err != nil {
			return fmt.Errorf("failed to create classifier: %v", err)
		}
		defer classifier.Close()

		if model, ok := classifier.(*learning.Model); ok {
			if err := model.Load(cfg.Model.File.ModelPath); err != nil {
				return fmt.Errorf("failed to load model: %v", err)
			}
		}

		fmt.Printf("🚀 HAMLET Performance Benchmark\n")
		fmt.Printf("📁 Dataset: %s\n", benchmarkInput)
		fmt.Printf("💬 Messages: %d\n", len(records))
		fmt.Printf("🔄 Benchmark runs: %d\n", benchmarkRuns)
		fmt.Printf("⚡ Concurrent workers: %d\n", benchmarkConcurrent)
		if benchmarkConfig != "" {
			fmt.Printf("⚙️ Configuration: %s\n", benchmarkConfig)
		}
		fmt.Printf("\n")

		result := runBenchmark(classifier, records, benchmarkRuns, benchmarkConcurrent)
		displayBenchmarkResults(result)

		return nil
	},
}

// BenchmarkResult contains performance metrics
type BenchmarkResult struct {
	TotalMessages     int
	TotalTime         time.Duration
	AvgTimePerMessage float64
	MinTime           time.Duration
	MaxTime           time.Duration
	MedianTime        time.Duration
	P95Time           time.Duration
	P99Time           time.Duration
	MessagesPerSecond float64

	// Classification results against the dataset labels
	Correct   int
	ByLabel   map[string]int
	Errors    int
	ErrorRate float64

	// Individual message times
	MessageTimes []time.Duration
}

// runBenchmark classifies every record runs times with a bounded worker pool
func runBenchmark(classifier learning.Classifier, records dataset.Dataset, runs, concurrent int) *BenchmarkResult {
	result := &BenchmarkResult{
		TotalMessages: len(records) * runs,
		MessageTimes:  make([]time.Duration, 0, len(records)*runs),
		ByLabel:       make(map[string]int),
	}

	fmt.Printf("🏃 Running benchmark...\n")

	var mu sync.Mutex
	var wg sync.WaitGroup

	// Channel to control concurrency
	semaphore := make(chan struct{}, concurrent)

	start := time.Now()

	for run := 0; run < runs; run++ {
		for _, record := range records {
			wg.Add(1)

			go func(record dataset.Record) {
				defer wg.Done()

				// Acquire semaphore
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				// Measure classification time
				msgStart := time.Now()
				pred, err := classifier.Classify(record.Text)
				msgDuration := time.Since(msgStart)

				// Update results (thread-safe)
				mu.Lock()
				result.MessageTimes = append(result.MessageTimes, msgDuration)

				if err != nil {
					result.Errors++
				} else {
					result.ByLabel[pred.Label]++
					if pred.Label == record.Label {
						result.Correct++
					}
				}
				mu.Unlock()
			}(record)
		}
	}

	wg.Wait()
	result.TotalTime = time.Since(start)

	calculateStatistics(result)

	return result
}

// calculateStatistics computes performance statistics
func calculateStatistics(result *BenchmarkResult) {
	if len(result.MessageTimes) == 0 {
		return
	}

	// Sort times for percentile calculations
	times := make([]time.Duration, len(result.MessageTimes))
	copy(times, result.MessageTimes)
	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	// Basic statistics
	var totalNanos int64
	for _, t := range times {
		totalNanos += t.Nanoseconds()
	}

	result.AvgTimePerMessage = float64(totalNanos) / float64(len(times)) / 1e6 // Convert to ms
	result.MinTime = times[0]
	result.MaxTime = times[len(times)-1]

	// Percentiles
	result.MedianTime = times[len(times)/2]
	result.P95Time = times[int(float64(len(times))*0.95)]
	result.P99Time = times[int(float64(len(times))*0.99)]

	// Throughput
	result.MessagesPerSecond = float64(len(times)) / result.TotalTime.Seconds()

	// Error rate
	result.ErrorRate = float64(result.Errors) / float64(len(times)) * 100
}

// displayBenchmarkResults shows formatted benchmark results
func displayBenchmarkResults(result *BenchmarkResult) {
	fmt.Printf("📊 Benchmark Results\n")
	fmt.Printf("═══════════════════════════════════════\n\n")

	// Performance metrics
	fmt.Printf("⚡ Performance Metrics:\n")
	fmt.Printf("  Total messages processed: %d\n", result.TotalMessages)
	fmt.Printf("  Total time: %v\n", result.TotalTime)
	fmt.Printf("  Average time per message: %.3f ms\n", result.AvgTimePerMessage)
	fmt.Printf("  Messages per second: %.0f\n", result.MessagesPerSecond)
	fmt.Printf("\n")

	// Time distribution
	fmt.Printf("📈 Time Distribution:\n")
	fmt.Printf("  Min time: %.3f ms\n", float64(result.MinTime.Nanoseconds())/1e6)
	fmt.Printf("  Max time: %.3f ms\n", float64(result.MaxTime.Nanoseconds())/1e6)
	fmt.Printf("  Median time: %.3f ms\n", float64(result.MedianTime.Nanoseconds())/1e6)
	fmt.Printf("  95th percentile: %.3f ms\n", float64(result.P95Time.Nanoseconds())/1e6)
	fmt.Printf("  99th percentile: %.3f ms\n", float64(result.P99Time.Nanoseconds())/1e6)
	fmt.Printf("\n")

	// Classification results
	fmt.Printf("🎯 Classification Results:\n")
	for label, count := range result.ByLabel {
		fmt.Printf("  Classified %s: %d\n", label, count)
	}
	if result.TotalMessages > 0 {
		fmt.Printf("  Agreement with labels: %.2f%%\n",
			float64(result.Correct)/float64(result.TotalMessages)*100)
	}
	fmt.Printf("  Error rate: %.2f%%\n", result.ErrorRate)
	fmt.Printf("\n")

	// Performance assessment
	fmt.Printf("🏆 Performance Assessment:\n")
	if result.AvgTimePerMessage < 1.0 {
		fmt.Printf("  ✅ EXCELLENT: Average time %.3f ms < 1 ms\n", result.AvgTimePerMessage)
	} else if result.AvgTimePerMessage < 5.0 {
		fmt.Printf("  ✅ GOOD: Average time %.3f ms < 5 ms target\n", result.AvgTimePerMessage)
	} else {
		fmt.Printf("  ❌ NEEDS IMPROVEMENT: Average time %.3f ms > 5 ms target\n", result.AvgTimePerMessage)
	}

	if result.MessagesPerSecond > 10000 {
		fmt.Printf("  🚀 HIGH THROUGHPUT: %.0f messages/second\n", result.MessagesPerSecond)
	} else if result.MessagesPerSecond > 1000 {
		fmt.Printf("  ⚡ GOOD THROUGHPUT: %.0f messages/second\n", result.MessagesPerSecond)
	} else {
		fmt.Printf("  🐌 LOW THROUGHPUT: %.0f messages/second\n", result.MessagesPerSecond)
	}

	fmt.Printf("\n")
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkInput, "input", "i", "", "Labeled dataset file (TSV or CSV)")
	benchmarkCmd.Flags().StringVarP(&benchmarkConfig, "config", "c", "", "Configuration file path")
	benchmarkCmd.Flags().StringVarP(&benchmarkModelPath, "model", "m", "", "Path to trained model (overrides config)")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 3, "Number of benchmark runs")
	benchmarkCmd.Flags().IntVarP(&benchmarkConcurrent, "concurrent", "j", 4, "Number of concurrent workers")

	benchmarkCmd.MarkFlagRequired("input")
}
