// Copyright 2024 Mike Carlton
// Released under terms of the MIT License:
//   http://www.opensource.org/licenses/mit-license.php

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"unitcalc/units"
)

// OpenExchangeRates API schema
type ExchangeRates struct {
	Disclaimer string             `json:"disclaimer"`
	License    string             `json:"license"`
	Timestamp  int64              `json:"timestamp"`
	Base       string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
}

func getAPIKey(source string) (string, error) {
	if apiKey := os.Getenv(source); apiKey != "" {
		return apiKey, nil
	}

	// On macOS, try Keychain if env var not found
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("security", "find-generic-password", "-s", source, "-a", "api_key", "-w")
		output, err := cmd.Output()
		if err == nil {
			apiKey := strings.TrimSpace(string(output))
			if apiKey != "" {
				return apiKey, nil
			}
		}
	}

	// Return error with helpful message if no key found
	return "", fmt.Errorf(`Please set api_key in security (macos) or the environment, e.g.
  export %s=$api_key
or
  security add-generic-password -s %s -a api_key -U -w $api_key`, source, source)
}

// returns the appropriate API URL for current or historical rates
func getRatesURL(date string) string {
	baseURL := "https://openexchangerates.org/api"
	if date != "" {
		return fmt.Sprintf("%s/historical/%s.json", baseURL, date)
	}
	return fmt.Sprintf("%s/latest.json", baseURL)
}

// performs HTTP GET request with optional token authorization
func httpGet(url, token string) (*ExchangeRates, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Token %s", token))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP failure '%d' from '%s'", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var exchangeRates ExchangeRates
	if err := json.Unmarshal(body, &exchangeRates); err != nil {
		return nil, err
	}

	return &exchangeRates, nil
}

// getRates loads exchange rates from the local cache, falling back to the
// API for a cache miss or stale latest rates. Historical rates never
// expire.
func getRates() (*ExchangeRates, error) {
	if cached, err := loadRates(options.date); err == nil && cached != nil {
		if options.date != "" || time.Since(time.Unix(cached.Timestamp, 0)) <= time.Hour {
			return cached, nil
		}
	}

	apiKey, err := getAPIKey("openexchangerates")
	if err != nil {
		return nil, err
	}

	fetched, err := httpGet(getRatesURL(options.date), apiKey)
	if err != nil {
		return nil, err
	}

	if err := saveRates(options.date, fetched); err != nil {
		// Log error but don't fail the conversion
		fmt.Fprintf(os.Stderr, "Warning: failed to cache rates: %v\n", err)
	}

	return fetched, nil
}

// currencySymbols maps common glyphs onto their ISO codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₿": "BTC",
}

// loadCurrencies registers the exchange-rate table as units: the base
// currency becomes a base unit and every quoted currency a derived unit
// worth 1/rate of it, so ordinary unit conversion handles cross rates.
func loadCurrencies(reg *units.Registry) error {
	rates, err := getRates()
	if err != nil {
		return err
	}

	base := rates.Base
	if base == "" {
		base = "USD"
	}
	if err := reg.NewBaseCurrency(base); err != nil {
		return err
	}

	one, err := reg.Value(1, base)
	if err != nil {
		return err
	}
	for code, rate := range rates.Rates {
		if code == base || rate == 0 {
			continue
		}
		if err := reg.NewUnit(code, units.New(1/rate).Mul(one)); err != nil {
			return err
		}
	}

	for symbol, code := range currencySymbols {
		if code != base {
			if _, ok := rates.Rates[code]; !ok {
				continue
			}
		}
		v, err := reg.Value(1, code)
		if err != nil {
			return err
		}
		if err := reg.NewUnit(symbol, v); err != nil {
			return err
		}
	}

	return nil
}
