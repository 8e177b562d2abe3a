package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Result records one HTTP outcome for aggregation.
type Result struct {
	Status int
	Body   string
	Err    error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	category := flag.String("category", "shirts", "product category")
	productID := flag.Int("product", 1, "stock item id")
	size := flag.String("size", "M", "product size")
	schoolID := flag.Int("school", 1, "school id")
	stockCheck := flag.Bool("stock", true, "check remaining stock after test")

	// Oversell probe: many users racing for a small stock row.
	nUsers := flag.Int("users", 200, "distinct users")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Printf("start oversell test: %s/%d users=%d concurrency=%d\n", *category, *productID, *nUsers, *concurrency)
	results := runCheckout(client, *baseURL, *category, *productID, *schoolID, *nUsers, *concurrency)
	printSummary("oversell", results)

	if *stockCheck {
		// Conflicts (409) plus remaining stock should account for every unit.
		remaining, err := getStock(client, *baseURL, *category, *productID, *size)
		if err != nil {
			fmt.Println("stock check err:", err)
		} else {
			fmt.Println("remaining stock:", remaining)
		}
	}

	// Rate-limit probe: one user hammering the endpoint. Run the server with
	// CHECKOUT_RATE_LIMIT=5 to see 429s at default test sizes.
	fmt.Println("\nstart rate limit test: same user (10001), 50 requests, concurrency 50")
	results2 := runCheckoutSameUser(client, *baseURL, *category, *productID, *schoolID, 10001, 50, 50)
	printSummary("rate_limit", results2)
}

type checkoutReq struct {
	UserID         int64  `json:"user_id"`
	Category       string `json:"category"`
	ProductID      int    `json:"product_id"`
	Quantity       int    `json:"quantity"`
	DeliveryOption string `json:"delivery_option"`
	SchoolID       int    `json:"school_id"`
}

func runCheckout(client *http.Client, baseURL, category string, productID, schoolID, nUsers, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, nUsers)

	for i := 0; i < nUsers; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := checkoutReq{
				UserID:         int64(idx + 1),
				Category:       category,
				ProductID:      productID,
				Quantity:       1,
				DeliveryOption: "Standard",
				SchoolID:       schoolID,
			}
			results[idx] = checkoutOnce(client, baseURL, req)
		}(i)
	}

	wg.Wait()
	return results
}

func runCheckoutSameUser(client *http.Client, baseURL, category string, productID, schoolID int, userID int64, total, concurrency int) []Result {
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := checkoutReq{
				UserID:         userID,
				Category:       category,
				ProductID:      productID,
				Quantity:       1,
				DeliveryOption: "Standard",
				SchoolID:       schoolID,
			}
			results[idx] = checkoutOnce(client, baseURL, req)
		}(i)
	}

	wg.Wait()
	return results
}

func checkoutOnce(client *http.Client, baseURL string, req checkoutReq) Result {
	b, _ := json.Marshal(req)
	url := fmt.Sprintf("%s/api/checkout", baseURL)
	httpReq, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return Result{Status: resp.StatusCode, Body: string(body)}
}

// printSummary aggregates the status code distribution.
func printSummary(name string, results []Result) {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	fmt.Printf("[%s] http status summary:\n", name)
	for _, code := range []int{200, 400, 404, 409, 429, 500} {
		if count[code] > 0 {
			fmt.Printf("  %d -> %d\n", code, count[code])
		}
	}
	if errCount > 0 {
		fmt.Printf("  errors -> %d\n", errCount)
	}
}

// getStock reads the live quantity so an oversell shows up as a negative or
// inconsistent remainder.
func getStock(client *http.Client, baseURL, category string, productID int, size string) (int64, error) {
	url := fmt.Sprintf("%s/api/stock/%s/%d?size=%s", baseURL, category, productID, size)
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Code int `json:"code"`
		Data struct {
			Quantity int64 `json:"quantity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, err
	}
	return out.Data.Quantity, nil
}
