package cmd

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	generateCount  int
	generateOutput string
	generateSplit  float64
	generateSeed   int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic test data",
	Long:  `Generate a synthetic labeled SMS dataset (TSV) for testing and benchmarking`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount <= 0 {
			return fmt.Errorf("count must be greater than 0")
		}

		if generateSplit < 0 || generateSplit > 1 {
			return fmt.Errorf("spam-ratio must be between 0 and 1")
		}

		generator := NewMessageGenerator(generateSeed)

		// Calculate spam vs ham counts
		spamCount := int(float64(generateCount) * generateSplit)
		hamCount := generateCount - spamCount

		fmt.Printf("🧪 Generating test messages...\n")
		fmt.Printf("💬 Total messages: %d\n", generateCount)
		fmt.Printf("🚫 Spam messages: %d (%.1f%%)\n", spamCount, generateSplit*100)
		fmt.Printf("✅ Ham messages: %d (%.1f%%)\n", hamCount, (1-generateSplit)*100)
		fmt.Printf("📂 Output file: %s\n\n", generateOutput)

		file, err := os.Create(generateOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %v", err)
		}
		defer file.Close()

		writer := bufio.NewWriter(file)
		start := time.Now()

		// Interleave spam and ham so the file is not label-ordered
		remaining := map[string]int{"spam": spamCount, "ham": hamCount}
		for remaining["spam"]+remaining["ham"] > 0 {
			label := "ham"
			if remaining["spam"] > 0 &&
				(remaining["ham"] == 0 || generator.rand.Float64() < generateSplit) {
				label = "spam"
			}
			remaining[label]--

			var text string
			if label == "spam" {
				text = generator.GenerateSpamMessage()
			} else {
				text = generator.GenerateHamMessage()
			}

			if _, err := fmt.Fprintf(writer, "%s\t%s\n", label, text); err != nil {
				return fmt.Errorf("failed to write message: %v", err)
			}
		}

		if err := writer.Flush(); err != nil {
			return fmt.Errorf("failed to write output file: %v", err)
		}

		duration := time.Since(start)

		fmt.Printf("✅ Generation complete!\n")
		fmt.Printf("⏱️ Time taken: %v\n", duration)
		if duration > 0 {
			fmt.Printf("📈 Rate: %.0f messages/second\n", float64(generateCount)/duration.Seconds())
		}

		return nil
	},
}

// MessageGenerator generates realistic test SMS messages
type MessageGenerator struct {
	rand *rand.Rand

	spamTemplates []string
	hamTemplates  []string
	disclaimers   []string
	prizes        []string
	names         []string
	places        []string
}

// NewMessageGenerator creates a seeded message generator
func NewMessageGenerator(seed int64) *MessageGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &MessageGenerator{
		rand: rand.New(rand.NewSource(seed)),

		spamTemplates: []string{
			"URGENT! You have won %s. Call %s now to claim. %s",
			"Congratulations! You have been selected for a FREE %s. Text WIN to %s. %s",
			"WINNER!! As a valued customer you have won %s. Claim code %s. %s",
			"FREE entry in our weekly competition for %s! Text now to %s. %s",
			"You have a guaranteed %s waiting. Call %s before it expires. %s",
			"Exclusive offer: %s at 90%% off today only! Reply YES to %s. %s",
			"Your mobile number has won %s in our lucky draw! Ring %s. %s",
		},
		hamTemplates: []string{
			"Hey %s, are we still on for %s later?",
			"Running late, meet you at %s around %s",
			"Can you pick up milk on the way back from %s? Thanks %s",
			"Happy birthday %s!! Hope you have a great day at %s",
			"Meeting moved to %s, see you there at %s",
			"Lunch at %s tomorrow? Let me know, %s",
			"Just landed, heading to %s now. Tell %s I said hi",
			"Did you see the match last night? %s was unreal. Drinks at %s?",
		},
		disclaimers: []string{
			"T&Cs apply", "18+ only", "No purchase necessary", "Txt STOP to opt out",
			"Limited time only", "Act now", "Msg rates may apply", "Offer expires today",
		},
		prizes: []string{
			"a 1000 pound", "a brand new iPhone", "a 500 cash", "a holiday to Spain",
			"a 2000 shopping voucher", "free cinema tickets",
		},
		names: []string{
			"sam", "alex", "jo", "chris", "pat", "max", "dan", "el", "nick", "kate",
		},
		places: []string{
			"the station", "work", "the gym", "town", "the office", "mine",
			"the usual place", "7pm", "8", "noon", "half six",
		},
	}
}

// GenerateSpamMessage returns one synthetic spam message
func (g *MessageGenerator) GenerateSpamMessage() string {
	template := g.spamTemplates[g.rand.Intn(len(g.spamTemplates))]
	prize := g.prizes[g.rand.Intn(len(g.prizes))]
	number := fmt.Sprintf("0800%06d", g.rand.Intn(1000000))
	tail := g.disclaimers[g.rand.Intn(len(g.disclaimers))]

	msg := fmt.Sprintf(template, prize, number, tail)

	// Spam loves shouting
	if g.rand.Float64() < 0.3 {
		msg = strings.ToUpper(msg)
	}

	return msg
}

// GenerateHamMessage returns one synthetic ham message
func (g *MessageGenerator) GenerateHamMessage() string {
	template := g.hamTemplates[g.rand.Intn(len(g.hamTemplates))]
	a := g.names[g.rand.Intn(len(g.names))]
	b := g.places[g.rand.Intn(len(g.places))]

	return fmt.Sprintf(template, a, b)
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1000, "Number of messages to generate")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "testdata.tsv", "Output TSV file")
	generateCmd.Flags().Float64VarP(&generateSplit, "spam-ratio", "s", 0.3, "Fraction of spam messages")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "Generator seed (0 = random)")
}
