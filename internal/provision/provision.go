// Package provision ensures every external resource exists before the
// service takes traffic: bucket, user pool, app client, table. Each step is
// idempotent, so a crash between steps just means the next start finishes the
// job.
package provision

import (
	"context"
	"fmt"
	"log/slog"

	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/autocarehq/autocare/internal/identity"
	"github.com/autocarehq/autocare/internal/objectstore"
	"github.com/autocarehq/autocare/internal/storage"
)

type Spec struct {
	Region        string
	BucketName    string
	TableName     string
	UserPoolName  string
	AppClientName string
}

// Resources holds the identifiers resolved during bootstrap.
type Resources struct {
	UserPoolID  string
	AppClientID string
}

func Bootstrap(ctx context.Context, logger *slog.Logger, spec Spec, s3api *s3.Client, cognitoAPI *cognito.Client, ddbAPI *dynamodb.Client) (Resources, error) {
	if err := objectstore.EnsureBucket(ctx, s3api, spec.BucketName, spec.Region); err != nil {
		return Resources{}, fmt.Errorf("ensure bucket: %w", err)
	}
	logger.Info("bucket ready", "bucket", spec.BucketName)

	poolID, err := identity.EnsureUserPool(ctx, cognitoAPI, spec.UserPoolName)
	if err != nil {
		return Resources{}, fmt.Errorf("ensure user pool: %w", err)
	}
	logger.Info("user pool ready", "pool_id", poolID)

	clientID, err := identity.EnsureAppClient(ctx, cognitoAPI, poolID, spec.AppClientName)
	if err != nil {
		return Resources{}, fmt.Errorf("ensure app client: %w", err)
	}
	logger.Info("app client ready", "client_id", clientID)

	if err := storage.EnsureTable(ctx, ddbAPI, spec.TableName); err != nil {
		return Resources{}, fmt.Errorf("ensure table: %w", err)
	}
	logger.Info("table ready", "table", spec.TableName)

	return Resources{UserPoolID: poolID, AppClientID: clientID}, nil
}
