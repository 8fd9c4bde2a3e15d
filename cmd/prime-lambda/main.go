package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"serverless-bench/internal/primes"
)

func handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	headers, body, err := primes.Response(primes.DefaultLimit)
	if err != nil {
		log.Printf("Failed to build response: %v", err)
		return events.LambdaFunctionURLResponse{StatusCode: 500}, err
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: 200,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func main() {
	lambda.Start(handle)
}
