// Package primes implements the CPU-bound workload deployed to every provider.
package primes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// DefaultLimit is the sieve bound used by the deployed function
const DefaultLimit = 10_000_000

// RequestStartHeader reports, in Unix milliseconds, when the handler began
const RequestStartHeader = "X-Request-Start"

// Result is the response body of the function
type Result struct {
	Message       string `json:"message"`
	PrimeCount    int    `json:"primeCount"`
	LastPrime     int    `json:"lastPrime"`
	ExecutionTime int64  `json:"executionTime"` // milliseconds
}

// Sieve returns every prime <= limit in ascending order
func Sieve(limit int) []int {
	if limit < 2 {
		return nil
	}

	composite := make([]bool, limit+1)
	var primes []int
	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		primes = append(primes, i)
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

// Compute runs the sieve and reports how long it took
func Compute(limit int) Result {
	start := time.Now()
	primes := Sieve(limit)
	elapsed := time.Since(start)

	result := Result{
		Message:       "Hello from Serverless Function",
		PrimeCount:    len(primes),
		ExecutionTime: elapsed.Milliseconds(),
	}
	if len(primes) > 0 {
		result.LastPrime = primes[len(primes)-1]
	}
	return result
}

// Response computes the result and returns the headers and JSON body to send
func Response(limit int) (map[string]string, []byte, error) {
	started := time.Now()
	body, err := json.Marshal(Compute(limit))
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"Content-Type":     "application/json",
		RequestStartHeader: strconv.FormatInt(started.UnixMilli(), 10),
	}
	return headers, body, nil
}

// Handler serves the function over plain HTTP
func Handler(limit int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers, body, err := Response(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
