package dynamodb

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// NewClientFromConfig accepts an AWS SDK config and returns a DynamoDB client.
func NewClientFromConfig(cfg sdkaws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

// EnableTTL turns on DynamoDB's native expiry for attr on table. Tables that
// already have TTL enabled are left alone.
func EnableTTL(ctx context.Context, client *dynamodb.Client, table, attr string) error {
	out, err := client.DescribeTimeToLive(ctx, &dynamodb.DescribeTimeToLiveInput{TableName: sdkaws.String(table)})
	if err != nil {
		return fmt.Errorf("describe ttl for %s: %w", table, err)
	}
	if d := out.TimeToLiveDescription; d != nil && d.TimeToLiveStatus == types.TimeToLiveStatusEnabled {
		return nil
	}

	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: sdkaws.String(table),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: sdkaws.String(attr),
			Enabled:       sdkaws.Bool(true),
		},
	})
	if err != nil {
		// Enabling is in progress from another instance.
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("enable ttl for %s: %w", table, err)
	}
	return nil
}
