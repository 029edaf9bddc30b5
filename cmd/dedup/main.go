package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/liliang-cn/dedup"
	"github.com/liliang-cn/dedup/pkg/catalog"
	"github.com/liliang-cn/dedup/pkg/detect"
	"github.com/liliang-cn/dedup/pkg/embed"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Duplicate product detection for e-commerce catalogs",
	Long: `Finds duplicate and near-duplicate products in a catalog using
identifier matching, fuzzy attributes, SKU/name patterns and embedding
similarity, then proposes merge recommendations per duplicate group.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new catalog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		fmt.Printf("Catalog database initialized at %s\n", dbPath)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import products from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return fmt.Errorf("--file is required")
		}

		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		var products []*catalog.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return fmt.Errorf("invalid product JSON: %w", err)
		}

		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.ImportProducts(context.Background(), products); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d products\n", len(products))
		return nil
	},
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Manage product embeddings",
}

var embedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate embeddings via the OpenAI API",
	Long: `Generates an embedding vector for each stored product and saves it
in the catalog database. Requires OPENAI_API_KEY in the environment or
a .env file. OPENAI_BASE_URL switches to a compatible endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		model, _ := cmd.Flags().GetString("model")

		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}

		embedder, err := embed.NewOpenAIEmbedder(embed.OpenAIOptions{
			APIKey:  apiKey,
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   model,
		})
		if err != nil {
			return err
		}

		engine, err := openEngine(dedup.WithEmbedder(embedder))
		if err != nil {
			return err
		}
		defer engine.Close()

		count, err := engine.EmbedCatalog(context.Background(), category)
		if err != nil {
			return fmt.Errorf("embedding generation failed: %w", err)
		}

		fmt.Printf("Stored %d embeddings\n", count)
		return nil
	},
}

var embedSetCmd = &cobra.Command{
	Use:   "set <sku>",
	Short: "Store a precomputed embedding vector for a SKU",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sku := args[0]
		vectorStr, _ := cmd.Flags().GetString("vector")
		if vectorStr == "" {
			return fmt.Errorf("--vector is required")
		}

		var vector []float32
		for _, part := range strings.Split(vectorStr, ",") {
			val, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
			if err != nil {
				return fmt.Errorf("invalid vector format: %w", err)
			}
			vector = append(vector, float32(val))
		}

		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		if err := engine.SetEmbedding(context.Background(), sku, vector); err != nil {
			return fmt.Errorf("failed to store embedding: %w", err)
		}

		fmt.Printf("Embedding stored for %s\n", sku)
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Detect duplicates and print merge recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
		asJSON, _ := cmd.Flags().GetBool("json")

		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		report, err := engine.ScanCategory(context.Background(), category, minConfidence)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		if asJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		renderReport(report)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		stats, err := engine.Stats(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("Products:   %d\n", stats.Products)
		fmt.Printf("Embeddings: %d\n", stats.Embeddings)
		return nil
	},
}

func openEngine(opts ...dedup.Option) (*dedup.Engine, error) {
	config := dedup.DefaultConfig(dbPath)
	if verbose {
		config.Detector.Logger = detect.NewStdLogger(detect.LevelDebug)
	}
	engine, err := dedup.Open(config, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return engine, nil
}

func renderReport(report *detect.Report) {
	bold := color.New(color.Bold)
	bold.Printf("Scanned %d products: %d candidate pairs, %d duplicate groups\n\n",
		report.ProductCount, len(report.Candidates), len(report.Groups))

	if len(report.Candidates) > 0 {
		bold.Println("Candidate pairs")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"SKU 1", "SKU 2", "Confidence", "Tier", "Reasons"})
		for _, c := range report.Candidates {
			table.Append([]string{
				c.SKU1,
				c.SKU2,
				fmt.Sprintf("%.3f", c.Confidence),
				tierLabel(c.Confidence),
				c.Reason(),
			})
		}
		table.Render()
		fmt.Println()
	}

	if len(report.Recommendations) > 0 {
		bold.Println("Merge recommendations")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Primary", "Merged SKUs", "Inventory", "Price", "Savings"})
		for _, r := range report.Recommendations {
			price := "-"
			if r.MergedPrice != nil {
				price = fmt.Sprintf("%.2f", *r.MergedPrice)
			}
			table.Append([]string{
				r.PrimarySKU,
				strings.Join(r.MergedSKUs, ", "),
				strconv.Itoa(r.TotalInventory),
				price,
				fmt.Sprintf("%.2f", r.EstimatedSavings),
			})
		}
		table.Render()
	}
}

func tierLabel(confidence float64) string {
	tier := detect.TierFor(confidence)
	switch tier {
	case detect.TierDefinite:
		return color.RedString(tier)
	case detect.TierLikely:
		return color.YellowString(tier)
	case detect.TierPossible:
		return color.CyanString(tier)
	default:
		return tier
	}
}

func init() {
	// .env is optional; ignore a missing file
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "catalog.db", "Database file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	importCmd.Flags().String("file", "", "JSON file with an array of products")

	embedGenerateCmd.Flags().String("category", "", "Limit to one category")
	embedGenerateCmd.Flags().String("model", "", "Embedding model name")
	embedSetCmd.Flags().String("vector", "", "Comma-separated vector values")
	embedCmd.AddCommand(embedGenerateCmd, embedSetCmd)

	scanCmd.Flags().String("category", "", "Limit to one category")
	scanCmd.Flags().Float64("min-confidence", 0, "Clustering threshold (default 0.85)")
	scanCmd.Flags().Bool("json", false, "Emit the full report as JSON")

	rootCmd.AddCommand(initCmd, importCmd, embedCmd, scanCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
