// Package identity wraps the Cognito user pool: signup, login, token
// resolution, and sign-out. Tokens are opaque access tokens; every resolution
// round-trips to the provider so revoked sessions fail immediately.
package identity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/autocarehq/autocare/internal/apperr"
)

// User is the authenticated caller as resolved by the provider.
type User struct {
	Email string
}

type Client struct {
	api      *cognito.Client
	poolID   string
	clientID string
}

func NewClient(api *cognito.Client, poolID, clientID string) *Client {
	return &Client{api: api, poolID: poolID, clientID: clientID}
}

// SignUp registers the user and auto-confirms the account. Auto-confirmation
// stands in for email verification until a real delivery pipeline exists.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	_, err := c.api.SignUp(ctx, &cognito.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
		},
	})
	if err != nil {
		return classify(err, "signup failed")
	}

	_, err = c.api.AdminConfirmSignUp(ctx, &cognito.AdminConfirmSignUpInput{
		UserPoolId: aws.String(c.poolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return classify(err, "account confirmation failed")
	}
	return nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	out, err := c.api.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		ClientId: aws.String(c.clientID),
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return "", classify(err, "login failed")
	}
	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return "", apperr.New(apperr.Internal, "login failed")
	}
	return *out.AuthenticationResult.AccessToken, nil
}

// Resolve maps an access token to the user it belongs to.
func (c *Client) Resolve(ctx context.Context, accessToken string) (User, error) {
	out, err := c.api.GetUser(ctx, &cognito.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return User{}, apperr.Wrap(apperr.Unauthenticated, "Invalid token", err)
	}

	email := aws.ToString(out.Username)
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "email" && aws.ToString(attr.Value) != "" {
			email = aws.ToString(attr.Value)
		}
	}
	return User{Email: email}, nil
}

// SignOut invalidates every session issued for the token's user.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cognito.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return classify(err, "logout failed")
	}
	return nil
}

// ReadyCheck reports whether the user pool is reachable.
func (c *Client) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.api.DescribeUserPool(ctx, &cognito.DescribeUserPoolInput{
			UserPoolId: aws.String(c.poolID),
		})
		return err
	}
}
