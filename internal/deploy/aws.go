package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"serverless-bench/internal/awsconf"
	"serverless-bench/internal/config"
)

const functionURLStatementID = "FunctionURLAllowPublicAccess"

// LambdaAPI is the subset of the Lambda client used by AWSDeployer
type LambdaAPI interface {
	CreateFunction(ctx context.Context, params *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	CreateFunctionUrlConfig(ctx context.Context, params *lambda.CreateFunctionUrlConfigInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionUrlConfigOutput, error)
	AddPermission(ctx context.Context, params *lambda.AddPermissionInput, optFns ...func(*lambda.Options)) (*lambda.AddPermissionOutput, error)
	DeleteFunction(ctx context.Context, params *lambda.DeleteFunctionInput, optFns ...func(*lambda.Options)) (*lambda.DeleteFunctionOutput, error)
}

// LambdaClientFactory returns a Lambda client bound to region
type LambdaClientFactory func(ctx context.Context, region string) (LambdaAPI, error)

// AWSDeployer deploys the function to AWS Lambda behind a public function URL
type AWSDeployer struct {
	log       *slog.Logger
	cfg       config.AWSConfig
	newClient LambdaClientFactory
}

// NewAWSDeployer creates a new AWS deployer
func NewAWSDeployer(log *slog.Logger, cfg config.AWSConfig) *AWSDeployer {
	return &AWSDeployer{
		log: log.With("provider", ProviderAWS),
		cfg: cfg,
		newClient: func(ctx context.Context, region string) (LambdaAPI, error) {
			awsCfg, err := awsconf.Load(ctx, region, cfg.AccessKeyID, cfg.SecretAccessKey)
			if err != nil {
				return nil, err
			}
			return lambda.NewFromConfig(awsCfg), nil
		},
	}
}

func (d *AWSDeployer) Name() string { return ProviderAWS }

// Deploy creates the function, its URL and the public invoke permission in
// every configured region
func (d *AWSDeployer) Deploy(ctx context.Context) ([]Record, error) {
	archive, err := zipFile(d.cfg.SourceFilePath)
	if err != nil {
		return nil, newDeployError(ProviderAWS, "", "package", err)
	}
	d.log.Info("Packaged function",
		slog.String("source", d.cfg.SourceFilePath),
		slog.Int("bytes", len(archive)),
		slog.String("role_arn", d.cfg.RoleARN))

	var records []Record
	for _, region := range d.cfg.Regions {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		log := d.log.With("region", region)
		log.Info("Deploying function", "function", d.cfg.FunctionName)

		url, err := d.deployRegion(ctx, region, archive)
		recordOutcome(ProviderAWS, err)
		if err != nil {
			var notFound *types.ResourceNotFoundException
			if errors.As(err, &notFound) {
				log.Warn("Region might not be available for this account, skipping", "error", err)
			} else {
				log.Error("Deployment failed", "error", err)
			}
			continue
		}

		records = append(records, Record{
			Provider:     ProviderAWS,
			Region:       region,
			FunctionName: d.cfg.FunctionName,
			URL:          url,
		})
		log.Info("Successfully deployed", "url", url)
	}
	return records, nil
}

func (d *AWSDeployer) deployRegion(ctx context.Context, region string, archive []byte) (string, error) {
	client, err := d.newClient(ctx, region)
	if err != nil {
		return "", newDeployError(ProviderAWS, region, "client", err)
	}

	_, err = client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName: aws.String(d.cfg.FunctionName),
		Code:         &types.FunctionCode{ZipFile: archive},
		Handler:      aws.String(d.cfg.Handler),
		Role:         aws.String(d.cfg.RoleARN),
		Runtime:      types.Runtime(d.cfg.Runtime),
		MemorySize:   aws.Int32(int32(d.cfg.MemoryMB)),
		Timeout:      aws.Int32(int32(d.cfg.TimeoutSeconds)),
	})
	if err != nil {
		return "", newDeployError(ProviderAWS, region, "create_function", err)
	}

	urlOut, err := client.CreateFunctionUrlConfig(ctx, &lambda.CreateFunctionUrlConfigInput{
		FunctionName: aws.String(d.cfg.FunctionName),
		AuthType:     types.FunctionUrlAuthTypeNone,
	})
	if err != nil {
		return "", newDeployError(ProviderAWS, region, "create_function_url", err)
	}

	_, err = client.AddPermission(ctx, &lambda.AddPermissionInput{
		FunctionName:        aws.String(d.cfg.FunctionName),
		StatementId:         aws.String(functionURLStatementID),
		Action:              aws.String("lambda:InvokeFunctionUrl"),
		Principal:           aws.String("*"),
		FunctionUrlAuthType: types.FunctionUrlAuthTypeNone,
	})
	if err != nil {
		return "", newDeployError(ProviderAWS, region, "add_permission", err)
	}

	return aws.ToString(urlOut.FunctionUrl), nil
}

// Delete removes the function from every recorded region
func (d *AWSDeployer) Delete(ctx context.Context, records []Record) error {
	var errs []error
	for _, r := range records {
		log := d.log.With("region", r.Region, "function", r.FunctionName)

		client, err := d.newClient(ctx, r.Region)
		if err == nil {
			_, err = client.DeleteFunction(ctx, &lambda.DeleteFunctionInput{
				FunctionName: aws.String(r.FunctionName),
			})
		}
		if err != nil {
			log.Error("Failed to delete function", "error", err)
			errs = append(errs, newDeployError(ProviderAWS, r.Region, "delete_function", err))
			continue
		}
		log.Info("Deleted function")
	}
	return deleteErrors(errs)
}

// zipFile packages a single file at maximum compression. The entry keeps
// the file's base name and is marked executable so it can serve as a
// custom runtime bootstrap.
func zipFile(path string) ([]byte, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	header := &zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Deflate,
	}
	header.SetMode(0755)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return nil, fmt.Errorf("failed to write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
