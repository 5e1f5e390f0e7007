package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/shelfcheck/pkg/usecase"
	"github.com/secmon-lab/shelfcheck/pkg/utils/async"
	"github.com/secmon-lab/shelfcheck/pkg/utils/errutil"
	"github.com/secmon-lab/shelfcheck/pkg/utils/logging"
	"github.com/secmon-lab/shelfcheck/pkg/utils/safe"
	libslack "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// maxSlackBodySize caps webhook payloads
const maxSlackBodySize = 1 << 20

// verifySlackSignature checks the v0 signature and the request age of a Slack request
func verifySlackSignature(signingSecret string, header http.Header, body []byte) error {
	sv, err := libslack.NewSecretsVerifier(header, signingSecret)
	if err != nil {
		return goerr.Wrap(err, "invalid slack signature headers")
	}
	if _, err := sv.Write(body); err != nil {
		return goerr.Wrap(err, "failed to hash request body")
	}
	if err := sv.Ensure(); err != nil {
		return goerr.Wrap(err, "signature mismatch")
	}
	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := safe.ReadAll(r.Body, maxSlackBodySize)
			safe.Close(ctx, r.Body)
			if err != nil {
				status := http.StatusBadRequest
				if errors.Is(err, safe.ErrTooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), status)
				return
			}

			if err := verifySlackSignature(signingSecret, r.Header, body); err != nil {
				logging.From(ctx).Warn("slack signature verification failed", "error", err.Error())
				writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultSlackEventTimeout bounds the background import of one webhook event
const DefaultSlackEventTimeout = 5 * time.Minute

// SlackWebhookHandler handles Slack Events API webhook requests
type SlackWebhookHandler struct {
	slackUC *usecase.SlackUseCases
	timeout time.Duration
}

// NewSlackWebhookHandler creates a new Slack webhook handler
func NewSlackWebhookHandler(slackUC *usecase.SlackUseCases) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		slackUC: slackUC,
		timeout: DefaultSlackEventTimeout,
	}
}

// ServeHTTP handles Slack webhook requests
func (h *SlackWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Read body (already verified by middleware)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var challenge *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, []byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		// Return 200 immediately to satisfy Slack's 3-second timeout requirement.
		// Redelivered events are imported again; the source key makes that a no-op.
		w.WriteHeader(http.StatusOK)

		retry := r.Header.Get("X-Slack-Retry-Num")
		async.Dispatch(ctx, "slack_event", h.timeout, func(ctx context.Context) error {
			logging.From(ctx).Info("processing slack callback event",
				"inner_type", eventsAPIEvent.InnerEvent.Type,
				"team_id", eventsAPIEvent.TeamID,
				"retry", retry,
			)

			if _, err := h.slackUC.HandleSlackEvent(ctx, &eventsAPIEvent); err != nil {
				return goerr.Wrap(err, "failed to handle slack event")
			}
			return nil
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}
