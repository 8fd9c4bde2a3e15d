// Package serverlessbench is the Google Cloud Functions entry point.
// gcloud builds the package at the root of the uploaded module, so the
// exported handler lives here and is deployed with
// --entry-point=BenchmarkFunction --source=.
package serverlessbench

import (
	"net/http"

	"serverless-bench/internal/primes"
)

var handler = primes.Handler(primes.DefaultLimit)

// BenchmarkFunction serves the prime count over HTTP
func BenchmarkFunction(w http.ResponseWriter, r *http.Request) {
	handler.ServeHTTP(w, r)
}
