// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lore Contributors

package provider

import (
	"context"
	"errors"

	loreerr "github.com/lore-dev/lore/pkg/errors"
)

// WrapUpstream classifies a gateway call failure: context deadline expiry
// becomes a timeout, everything else an upstream provider failure. The
// operation name and provider travel with the error.
func WrapUpstream(ctx context.Context, err error, providerName, op string) error {
	if err == nil {
		return nil
	}

	code := loreerr.CodeProviderUpstreamFailure
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = loreerr.CodeProviderRequestTimeout
	}

	return loreerr.Wrap(err, code, op,
		loreerr.FieldProvider(providerName),
		loreerr.FieldOperation(op),
	)
}
