package awssm

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

// classifyError converts Secrets Manager errors to secretstore sentinels.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Context errors have highest priority for proper cancellation handling
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s operation: %w", operation, err)
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", secretstore.ErrNotFound, err)
	}

	var exists *types.ResourceExistsException
	if errors.As(err, &exists) {
		return fmt.Errorf("%w: %s", secretstore.ErrAlreadyExists, err)
	}

	var internal *types.InternalServiceError
	if errors.As(err, &internal) {
		return fmt.Errorf("%w: %s operation: %s", secretstore.ErrTransient, operation, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "ResourceNotFoundException":
			return fmt.Errorf("%w: %s", secretstore.ErrNotFound, err)
		case "ResourceExistsException":
			return fmt.Errorf("%w: %s", secretstore.ErrAlreadyExists, err)
		case "AccessDeniedException", "UnrecognizedClientException":
			return fmt.Errorf("%w: %s operation", secretstore.ErrAccessDenied, operation)
		case "ThrottlingException", "TooManyRequestsException", "RequestTimeout",
			"InternalServiceError", "InternalFailure", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation (code: %s)", secretstore.ErrTransient, operation, code) // Retryable
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
