package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quantfund/pkg/agents"
	"quantfund/pkg/backtest"
	"quantfund/pkg/calendar"
	"quantfund/pkg/decision"
	"quantfund/pkg/llm"
	"quantfund/pkg/news"
	"quantfund/pkg/prices"
)

const (
	dateLayout = "2006-01-02"
	logDir     = "logs"
	chartFile  = "backtest_results.png"
)

func main() {
	ticker := flag.String("ticker", "", "stock ticker to backtest (required)")
	endDateFlag := flag.String("end-date", "", "backtest end date YYYY-MM-DD (default: today)")
	startDateFlag := flag.String("start-date", "", "backtest start date YYYY-MM-DD (default: 90 days before end date)")
	initialCapital := flag.Float64("initial-capital", 100_000, "starting cash")
	numOfNews := flag.Int("num-of-news", 5, "headlines fetched per decision")
	agentKind := flag.String("agent", "local", "decision agent: local or remote")
	flag.Parse()

	// Missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *ticker, *startDateFlag, *endDateFlag, *initialCapital, *numOfNews, *agentKind); err != nil {
		logger.Error("backtest failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, ticker, startFlag, endFlag string, capital float64, numOfNews int, agentKind string) error {
	endDate := time.Now().UTC().Truncate(24 * time.Hour)
	if endFlag != "" {
		var err error
		endDate, err = time.Parse(dateLayout, endFlag)
		if err != nil {
			return fmt.Errorf("parse end date: %w", err)
		}
	}
	startDate := endDate.AddDate(0, 0, -90)
	if startFlag != "" {
		var err error
		startDate, err = time.Parse(dateLayout, startFlag)
		if err != nil {
			return fmt.Errorf("parse start date: %w", err)
		}
	}

	cfg := backtest.Config{
		Ticker:         ticker,
		StartDate:      startDate,
		EndDate:        endDate,
		InitialCapital: capital,
		NewsCount:      numOfNews,
	}

	apiKey := os.Getenv("ALPACA_API_KEY")
	apiSecret := os.Getenv("ALPACA_SECRET_KEY")
	if apiKey == "" || apiSecret == "" {
		return fmt.Errorf("ALPACA_API_KEY and ALPACA_SECRET_KEY must be set")
	}
	provider := prices.NewAlpacaProvider(apiKey, apiSecret)
	cal := calendar.New(calendar.NewAlpacaSource(apiKey, apiSecret, os.Getenv("ALPACA_BASE_URL")), logger)

	agent, err := buildAgent(agentKind, provider, logger)
	if err != nil {
		return err
	}

	runLog, err := backtest.NewRunLog(logDir, cfg)
	if err != nil {
		return err
	}
	defer runLog.Close()
	logger.Info("starting backtest",
		zap.String("run", runLog.ID),
		zap.String("ticker", ticker),
		zap.String("start", startDate.Format(dateLayout)),
		zap.String("end", endDate.Format(dateLayout)),
		zap.Float64("capital", capital))

	client := decision.NewClient(runLog.WrapAgent(agent), decision.DefaultConfig(), nil, logger)

	bt, err := backtest.New(cfg, client, provider, cal, logger)
	if err != nil {
		return err
	}

	result, err := bt.Run(context.Background())
	if err != nil {
		return err
	}

	summary, err := backtest.Analyze(capital, result.Snapshots)
	if err != nil {
		// An all-skipped range is a reportable outcome, not a crash.
		logger.Warn("no performance summary", zap.Error(err))
		return nil
	}
	fmt.Println()
	fmt.Println(summary)
	runLog.WriteSummary(summary, result.Portfolio.Trades)

	if err := backtest.RenderChart(result.Snapshots, chartFile); err != nil {
		logger.Warn("chart not rendered", zap.Error(err))
	} else {
		logger.Info("chart written", zap.String("path", chartFile))
	}
	logger.Info("run log written", zap.String("path", runLog.Path))
	return nil
}

func buildAgent(kind string, provider prices.Provider, logger *zap.Logger) (decision.Agent, error) {
	switch kind {
	case "local":
		hf := agents.NewHedgeFund(provider, logger)
		hf.News = news.NewFinvizFetcher(&http.Client{Timeout: 30 * time.Second})
		return hf, nil
	case "remote":
		apiURL := os.Getenv("AGENT_API_URL")
		if apiURL == "" {
			return nil, fmt.Errorf("AGENT_API_URL must be set for -agent=remote")
		}
		return llm.NewClient(&llm.Config{
			ApiUrl: apiURL,
			ApiKey: os.Getenv("AGENT_API_KEY"),
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q (want local or remote)", kind)
	}
}
