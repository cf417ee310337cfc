package apierr

import (
	"context"
	"net/http"

	"github.com/joy-dx/netpipe/dto"
)

const InterceptorName = "error"

// Classify maps a raw failure to a DomainError. It is total: every input,
// including nil, yields a value. Rules apply in priority order.
func Classify(failure *dto.RawFailure) *DomainError {
	if failure == nil {
		return newDomainError(CodeNetwork, MsgUnknown, nil)
	}

	if failure.StatusCode == http.StatusTooManyRequests {
		return newDomainError(CodeRateLimit, MsgRateLimit, failure)
	}

	switch failure.Code {
	case dto.TransportNetwork, dto.TransportConnRefused:
		return newDomainError(CodeNetwork, MsgUnreachable, failure)
	case dto.TransportHostNotFound:
		return newDomainError(CodeNetwork, MsgHostNotFound, failure)
	case dto.TransportTimeout, dto.TransportAborted:
		return newDomainError(CodeNetwork, MsgTimeout, failure)
	}

	if failure.StatusCode == http.StatusNotFound {
		msg := failure.BodyError()
		if msg == "" {
			msg = MsgNotFound
		}
		return newDomainError(CodeNotFound, msg, failure)
	}

	if failure.StatusCode >= http.StatusInternalServerError {
		return newDomainError(CodeNetwork, MsgServerError, failure)
	}

	msg := failure.BodyError()
	if msg == "" {
		msg = failure.Message
	}
	if msg == "" {
		msg = MsgUnknown
	}
	return newDomainError(CodeNetwork, msg, failure)
}

// Interceptor classifies every failure that reaches it, notifies the user once
// unless the request suppresses it, and always returns the DomainError.
func Interceptor(notifier dto.Notifier) dto.Interceptor {
	return dto.Interceptor{
		Name: InterceptorName,
		OnResponseError: func(ctx context.Context, failure *dto.RawFailure) (dto.Response, error) {
			domainErr := Classify(failure)
			suppressed := failure.Request != nil && failure.Request.Options.SuppressErrorNotification
			if notifier != nil && !suppressed {
				notifier.Error(domainErr.Message, "")
			}
			return dto.Response{}, domainErr
		},
	}
}
