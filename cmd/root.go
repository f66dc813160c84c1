package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tablemate/tablemate/internal/collector"
	"github.com/tablemate/tablemate/internal/deals"
	"github.com/tablemate/tablemate/internal/factories"
	"github.com/tablemate/tablemate/internal/interpret"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/repositories/memory"
	"github.com/tablemate/tablemate/internal/vendor"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tablemate [order text]...",
	Short: "Turns chat-room food orders into structured vendor orders",
	Long: `tablemate collects free-text orders the way a group chat produces them,
interprets each one against a store's live menu using fuzzy prefix matching,
picks the best combination of bundle deals, and prices the result with the
vendor. Pass one order per argument; each argument becomes one order line.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		if viper.GetBool("demo") {
			runDemo(cfg, args)
			return
		}
		runOrder(cfg, args)
	},
}

// runOrder drives a full one-shot session against the live vendor API.
func runOrder(cfg *models.Config, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	output := collector.NewOutputDestination(cfg)
	defer output.Close()

	client := vendor.NewClient(cfg, nil)
	c := collector.New(cfg, memory.NewCollectionRepository(), memory.NewOrderLineRepository(), client, output)

	session, err := c.StartCollection(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting collection: %v\n", err)
		os.Exit(1)
	}
	if store := viper.GetString("store"); store != "" {
		session.Settings.StoreID = store
	}
	if location := viper.GetString("location"); location != "" {
		store, err := c.SetStore(ctx, session, location)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding a store near %q: %v\n", location, err)
			os.Exit(1)
		}
		fmt.Printf("Ordering at %s (%s, %s %s)\n", store.StoreName, store.StreetName, store.PostalCode, store.City)
	}
	for _, text := range args {
		if _, err := c.AddOrderLine(ctx, session, "cli", text); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding order line: %v\n", err)
			os.Exit(1)
		}
	}

	receipt, err := c.Submit(ctx, session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error submitting order: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(receipt.Summary)
}

// runDemo interprets and optimizes against a generated menu, no network.
func runDemo(cfg *models.Config, args []string) {
	mf := &factories.MenuFactory{}
	menu := mf.CreateMenu()
	details := mf.CreateDealDetails()

	orderText := strings.Join(args, ";")
	items := interpret.ParseOrders(orderText, menu)

	var ordered []models.OrderItem
	for i, item := range items {
		if item == nil {
			fmt.Printf("order %d: no matching product\n", i+1)
			continue
		}
		ordered = append(ordered, *item)
		encoded, _ := json.Marshal(item)
		fmt.Printf("order %d: %s\n", i+1, encoded)
	}

	optimizer := deals.NewOptimizer(cfg.DealPriority)
	selections := optimizer.Select(ordered, menu.Deals(), func(code string) (models.DealDetail, error) {
		detail, ok := details[code]
		if !ok {
			return models.DealDetail{}, fmt.Errorf("no detail for deal %s", code)
		}
		return detail, nil
	}, deals.Context{
		Weekday:       time.Now().Format("Mon"),
		ServiceMethod: cfg.ServiceMethod,
	})
	for _, s := range selections {
		fmt.Printf("deal: %s\n", s.Code)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tablemate.yaml)")

	rootCmd.Flags().String("store", "", "Vendor store ID to order at")
	rootCmd.Flags().String("location", "", "Find the closest store to this location instead of --store")
	rootCmd.Flags().String("service-method", models.ServiceMethodCarryout, "Service method: Carryout or Delivery")
	rootCmd.Flags().String("deal-priority", "", "Comma-separated deal codes, highest priority first")
	rootCmd.Flags().Bool("demo", false, "Interpret against a generated demo menu, no vendor calls")
	rootCmd.Flags().Bool("kafka-enabled", false, "Enable Kafka event output")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-type", "console", "Event sink: console, json, parquet, kafka or postgres")

	viper.BindPFlags(rootCmd.Flags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tablemate")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
