package fetcher

import (
	"context"

	"github.com/rohmanhakim/paper-review/pkg/failure"
	"github.com/rohmanhakim/paper-review/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
