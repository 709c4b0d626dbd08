// Команда loadtest генерирует нагрузку на HTTP API каталога и печатает
// сводку по задержкам и кодам ответов.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const headerUserID = "X-User-ID"

type loadMode string

const (
	// modeRead читает заранее созданный товар и список по категории.
	modeRead loadMode = "read"
	// modeWrite создаёт и сразу удаляет товар.
	modeWrite loadMode = "write"
	// modeMixed создаёт, читает и обновляет товар; удаляет с вероятностью delete-rate.
	modeMixed loadMode = "mixed"
)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	timeout     time.Duration
	mode        loadMode
	deleteRate  int
	price       decimal.Decimal
	tag         string
	outputPath  string
}

func parseConfig(args []string) (config, error) {
	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		cfg        config
		modeValue  string
		priceValue string
	)
	fs.StringVar(&cfg.addr, "addr", "http://localhost:8080", "catalog API base URL")
	fs.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	fs.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 10m)")
	fs.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	fs.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	fs.StringVar(&modeValue, "mode", string(modeRead), "load mode: read | write | mixed")
	fs.IntVar(&cfg.deleteRate, "delete-rate", 50, "delete probability in percent for mixed mode (0..100)")
	fs.StringVar(&priceValue, "price", "9.99", "price of generated products")
	fs.StringVar(&cfg.tag, "tag", "load", "prefix for generated names")
	fs.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	price, err := decimal.NewFromString(strings.TrimSpace(priceValue))
	if err != nil {
		return cfg, fmt.Errorf("parse price: %w", err)
	}
	if price.IsNegative() {
		return cfg, errors.New("price must be >= 0")
	}
	cfg.price = price

	cfg.addr = strings.TrimRight(strings.TrimSpace(cfg.addr), "/")
	switch {
	case cfg.addr == "":
		return cfg, errors.New("addr is required")
	case cfg.duration < 0:
		return cfg, errors.New("duration must be >= 0")
	case cfg.duration == 0 && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when duration is not set")
	case cfg.duration > 0 && cfg.totalSet && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.deleteRate < 0 || cfg.deleteRate > 100:
		return cfg, errors.New("delete-rate must be between 0 and 100")
	case strings.TrimSpace(cfg.tag) == "":
		return cfg, errors.New("tag is required")
	}
	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch mode := loadMode(strings.TrimSpace(value)); mode {
	case modeRead, modeWrite, modeMixed:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// catalogClient выполняет запросы к API и записывает их в collector.
type catalogClient struct {
	http    *resty.Client
	timeout time.Duration
	col     *collector
}

func newCatalogClient(cfg config, col *collector) *catalogClient {
	client := resty.New().
		SetBaseURL(cfg.addr).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &catalogClient{http: client, timeout: cfg.timeout, col: col}
}

func (c *catalogClient) call(
	ctx context.Context,
	name, method, path string,
	body any,
	userID int64,
	expect int,
) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if userID > 0 {
		req.SetHeader(headerUserID, strconv.FormatInt(userID, 10))
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	code := 0
	if resp != nil {
		code = resp.StatusCode()
	}
	c.col.record(name, time.Since(start), statusLabel(code), err == nil && code == expect)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if code != expect {
		return nil, fmt.Errorf("%s: unexpected status %d: %s", name, code, strings.TrimSpace(resp.String()))
	}
	return resp.Body(), nil
}

// createdID извлекает id из ответа на создание.
func createdID(name string, body []byte) (int64, error) {
	id := gjson.GetBytes(body, "id")
	if !id.Exists() || id.Int() <= 0 {
		return 0, fmt.Errorf("%s: response has no id: %s", name, body)
	}
	return id.Int(), nil
}

// fixtures хранит данные, общие для всех сценариев прогона.
type fixtures struct {
	vendorID   int64
	categoryID int64
	productID  int64
}

func setup(ctx context.Context, client *catalogClient, cfg config, runID string) (fixtures, error) {
	var fx fixtures

	body, err := client.call(ctx, "CreateUser", http.MethodPost, "/users",
		map[string]any{"username": cfg.tag + "-" + runID, "is_vendor": true}, 0, http.StatusCreated)
	if err != nil {
		return fx, err
	}
	if fx.vendorID, err = createdID("CreateUser", body); err != nil {
		return fx, err
	}

	body, err = client.call(ctx, "CreateCategory", http.MethodPost, "/categories",
		map[string]any{"name": cfg.tag + "-" + runID}, 0, http.StatusCreated)
	if err != nil {
		return fx, err
	}
	if fx.categoryID, err = createdID("CreateCategory", body); err != nil {
		return fx, err
	}

	if cfg.mode == modeRead {
		if fx.productID, err = createProduct(ctx, client, cfg, fx, -1); err != nil {
			return fx, err
		}
	}
	return fx, nil
}

func productPayload(cfg config, fx fixtures, index int) map[string]any {
	return map[string]any{
		"name":        fmt.Sprintf("%s-product-%d", cfg.tag, index),
		"description": "generated by loadtest",
		"price":       cfg.price.StringFixed(2),
		"category":    fx.categoryID,
		"vendor":      fx.vendorID,
	}
}

func createProduct(ctx context.Context, client *catalogClient, cfg config, fx fixtures, index int) (int64, error) {
	body, err := client.call(ctx, "CreateProduct", http.MethodPost, "/products",
		productPayload(cfg, fx, index), 0, http.StatusCreated)
	if err != nil {
		return 0, err
	}
	return createdID("CreateProduct", body)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func runScenario(ctx context.Context, client *catalogClient, cfg config, fx fixtures, index int) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		client.col.record(scenarioName, time.Since(start), status, err == nil)
	}()

	switch cfg.mode {
	case modeRead:
		if _, err := client.call(ctx, "GetProduct", http.MethodGet, productPath(fx.productID), nil, 0, http.StatusOK); err != nil {
			return err
		}
		query := "/products?category=" + strconv.FormatInt(fx.categoryID, 10)
		_, err := client.call(ctx, "ListProducts", http.MethodGet, query, nil, 0, http.StatusOK)
		return err

	case modeWrite:
		id, err := createProduct(ctx, client, cfg, fx, index)
		if err != nil {
			return err
		}
		_, err = client.call(ctx, "DeleteProduct", http.MethodDelete, productPath(id), nil, 0, http.StatusOK)
		return err

	default:
		id, err := createProduct(ctx, client, cfg, fx, index)
		if err != nil {
			return err
		}
		if _, err := client.call(ctx, "GetProduct", http.MethodGet, productPath(id), nil, 0, http.StatusOK); err != nil {
			return err
		}
		update := productPayload(cfg, fx, index)
		update["description"] = "updated by loadtest"
		if _, err := client.call(ctx, "UpdateProduct", http.MethodPut, productPath(id), update, fx.vendorID, http.StatusOK); err != nil {
			return err
		}
		if shouldDelete(index, cfg.deleteRate) {
			_, err = client.call(ctx, "DeleteProduct", http.MethodDelete, productPath(id), nil, 0, http.StatusOK)
		}
		return err
	}
}

func shouldDelete(index, rate int) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 100 {
		return true
	}
	return index%100 < rate
}

func dispatchJobs(ctx context.Context, jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// run выполняет прогон и возвращает код выхода процесса.
func run(ctx context.Context, cfg config, out io.Writer) int {
	col := newCollector()
	client := newCatalogClient(cfg, col)

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())

	fx, err := setup(ctx, client, cfg, runID)
	if err != nil {
		fmt.Fprintf(out, "setup failed: %v\n", err)
		return 1
	}

	jobs := make(chan int, cfg.concurrency*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				_ = runScenario(ctx, client, cfg, fx, index)
			}
		}()
	}

	dispatchJobs(ctx, jobs, cfg)
	wg.Wait()

	result := col.buildReport(startedAt, time.Since(startedAt))
	printReport(out, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			fmt.Fprintf(out, "failed to write report: %v\n", err)
			return 1
		}
	}

	if result.FailedScenarios > 0 {
		return 1
	}
	return 0
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(context.Background(), cfg, os.Stdout))
}
