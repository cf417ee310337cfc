package relays

import (
	"log/slog"
	"time"

	"github.com/joy-dx/netpipe/dto"
	relayDTO "github.com/joy-dx/relay/dto"
)

const RlyNetChannel relayDTO.EventChannel = "net"

const (
	RlyNetLogRef      relayDTO.EventRef = "net.log"
	RlyNetRequestRef  relayDTO.EventRef = "net.request"
	RlyNetAuthRef     relayDTO.EventRef = "net.auth"
	RlyNetNotifyRef   relayDTO.EventRef = "net.notify"
	RlyNetNavigateRef relayDTO.EventRef = "net.navigate"
)

// RlyNetLog is a free-form pipeline log line.
type RlyNetLog struct {
	Msg string
}

func (e RlyNetLog) RelayChannel() relayDTO.EventChannel { return RlyNetChannel }
func (e RlyNetLog) RelayType() relayDTO.EventRef        { return RlyNetLogRef }
func (e RlyNetLog) Message() string                     { return e.Msg }
func (e RlyNetLog) ToSlog() []slog.Attr                 { return nil }

// RlyNetRequest reports a settled request.
type RlyNetRequest struct {
	RequestID  string
	Route      string
	Status     dto.RequestStatus
	StatusCode int
	Replayed   bool
	Duration   time.Duration
	Msg        string
}

func (e RlyNetRequest) RelayChannel() relayDTO.EventChannel { return RlyNetChannel }
func (e RlyNetRequest) RelayType() relayDTO.EventRef        { return RlyNetRequestRef }
func (e RlyNetRequest) Message() string                     { return e.Msg }
func (e RlyNetRequest) ToSlog() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("request_id", e.RequestID),
		slog.String("route", e.Route),
		slog.String("status", string(e.Status)),
		slog.Duration("duration", e.Duration),
	}
	if e.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status_code", e.StatusCode))
	}
	if e.Replayed {
		attrs = append(attrs, slog.Bool("replayed", true))
	}
	return attrs
}

type AuthStage string

const (
	AuthRefreshStarted   AuthStage = "refresh_started"
	AuthRefreshQueued    AuthStage = "refresh_queued"
	AuthRefreshSucceeded AuthStage = "refresh_succeeded"
	AuthRefreshFailed    AuthStage = "refresh_failed"
	AuthReplay           AuthStage = "replay"
	AuthCredentialError  AuthStage = "credential_error"
)

// RlyNetAuth reports AuthCoordinator transitions.
type RlyNetAuth struct {
	Stage     AuthStage
	RequestID string
	Route     string
	Waiters   int
	Expiry    time.Time
	Msg       string
}

func (e RlyNetAuth) RelayChannel() relayDTO.EventChannel { return RlyNetChannel }
func (e RlyNetAuth) RelayType() relayDTO.EventRef        { return RlyNetAuthRef }
func (e RlyNetAuth) Message() string                     { return e.Msg }
func (e RlyNetAuth) ToSlog() []slog.Attr {
	attrs := []slog.Attr{slog.String("stage", string(e.Stage))}
	if e.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", e.RequestID), slog.String("route", e.Route))
	}
	if e.Waiters > 0 {
		attrs = append(attrs, slog.Int("waiters", e.Waiters))
	}
	if !e.Expiry.IsZero() {
		attrs = append(attrs, slog.Time("expiry", e.Expiry))
	}
	return attrs
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// RlyNetNotify is a user-facing notification.
type RlyNetNotify struct {
	Severity    Severity
	Msg         string
	Description string
}

func (e RlyNetNotify) RelayChannel() relayDTO.EventChannel { return RlyNetChannel }
func (e RlyNetNotify) RelayType() relayDTO.EventRef        { return RlyNetNotifyRef }
func (e RlyNetNotify) Message() string                     { return e.Msg }
func (e RlyNetNotify) ToSlog() []slog.Attr {
	attrs := []slog.Attr{slog.String("severity", string(e.Severity))}
	if e.Description != "" {
		attrs = append(attrs, slog.String("description", e.Description))
	}
	return attrs
}

// RlyNetNavigate is emitted when the user is sent to another route.
type RlyNetNavigate struct {
	From string
	To   string
	Msg  string
}

func (e RlyNetNavigate) RelayChannel() relayDTO.EventChannel { return RlyNetChannel }
func (e RlyNetNavigate) RelayType() relayDTO.EventRef        { return RlyNetNavigateRef }
func (e RlyNetNavigate) Message() string                     { return e.Msg }
func (e RlyNetNavigate) ToSlog() []slog.Attr {
	return []slog.Attr{slog.String("from", e.From), slog.String("to", e.To)}
}
