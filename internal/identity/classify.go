package identity

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/autocarehq/autocare/internal/apperr"
)

// classify maps Cognito failures onto the error taxonomy with client-safe
// messages; the raw provider error stays wrapped for logging.
func classify(err error, fallback string) error {
	var (
		exists      *types.UsernameExistsException
		weakPass    *types.InvalidPasswordException
		badParam    *types.InvalidParameterException
		notFound    *types.UserNotFoundException
		notAuthed   *types.NotAuthorizedException
		unconfirmed *types.UserNotConfirmedException
		tooMany     *types.TooManyRequestsException
	)
	switch {
	case errors.As(err, &exists):
		return apperr.Wrap(apperr.Invalid, "User already exists", err)
	case errors.As(err, &weakPass):
		return apperr.Wrap(apperr.Invalid, "Password does not meet the password policy", err)
	case errors.As(err, &badParam):
		return apperr.Wrap(apperr.Invalid, "Invalid signup parameters", err)
	case errors.As(err, &notFound):
		return apperr.Wrap(apperr.NotFound, "User not found. Please sign up first.", err)
	case errors.As(err, &notAuthed):
		return apperr.Wrap(apperr.Unauthenticated, "Incorrect username or password", err)
	case errors.As(err, &unconfirmed):
		return apperr.Wrap(apperr.Forbidden, "Please verify your email before logging in", err)
	case errors.As(err, &tooMany):
		return apperr.Wrap(apperr.Unavailable, "Too many requests, try again later", err)
	default:
		return apperr.Wrap(apperr.Internal, fallback, err)
	}
}
