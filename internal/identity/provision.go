package identity

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// EnsureUserPool finds the pool by name or creates it, returning its ID.
func EnsureUserPool(ctx context.Context, api *cognito.Client, name string) (string, error) {
	list, err := api.ListUserPools(ctx, &cognito.ListUserPoolsInput{
		MaxResults: aws.Int32(60),
	})
	if err != nil {
		return "", err
	}
	for _, pool := range list.UserPools {
		if aws.ToString(pool.Name) == name {
			return aws.ToString(pool.Id), nil
		}
	}

	out, err := api.CreateUserPool(ctx, &cognito.CreateUserPoolInput{
		PoolName: aws.String(name),
		Policies: &types.UserPoolPolicyType{
			PasswordPolicy: &types.PasswordPolicyType{
				MinimumLength:    aws.Int32(8),
				RequireUppercase: true,
				RequireLowercase: true,
				RequireNumbers:   true,
				RequireSymbols:   true,
			},
		},
		AutoVerifiedAttributes: []types.VerifiedAttributeType{types.VerifiedAttributeTypeEmail},
		MfaConfiguration:       types.UserPoolMfaTypeOff,
	})
	if err != nil {
		return "", err
	}
	if out.UserPool == nil || out.UserPool.Id == nil {
		return "", errors.New("create user pool returned no id")
	}
	return *out.UserPool.Id, nil
}

// EnsureAppClient finds the app client by name or creates it, returning its ID.
// The client carries no secret so the browser can call USER_PASSWORD_AUTH.
func EnsureAppClient(ctx context.Context, api *cognito.Client, poolID, name string) (string, error) {
	list, err := api.ListUserPoolClients(ctx, &cognito.ListUserPoolClientsInput{
		UserPoolId: aws.String(poolID),
		MaxResults: aws.Int32(60),
	})
	if err != nil {
		return "", err
	}
	for _, client := range list.UserPoolClients {
		if aws.ToString(client.ClientName) == name {
			return aws.ToString(client.ClientId), nil
		}
	}

	out, err := api.CreateUserPoolClient(ctx, &cognito.CreateUserPoolClientInput{
		UserPoolId:     aws.String(poolID),
		ClientName:     aws.String(name),
		GenerateSecret: false,
		ExplicitAuthFlows: []types.ExplicitAuthFlowsType{
			types.ExplicitAuthFlowsTypeAllowUserPasswordAuth,
			types.ExplicitAuthFlowsTypeAllowRefreshTokenAuth,
		},
	})
	if err != nil {
		return "", err
	}
	if out.UserPoolClient == nil || out.UserPoolClient.ClientId == nil {
		return "", errors.New("create app client returned no id")
	}
	return *out.UserPoolClient.ClientId, nil
}
