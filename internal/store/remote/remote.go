// Package remote syncs review state with a cloud HTTP API.
//
// Every piece of state is one JSON document per learner:
//
//	GET/PUT {base}/learners/{learner}/srs_cards
//	GET/PUT {base}/learners/{learner}/srs_session
//	GET/PUT {base}/learners/{learner}/srs_streak
//
// A 404 on GET means the document does not exist yet.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/reviewdeck/internal/srs"
	"github.com/at-ishikawa/reviewdeck/internal/store"
)

const (
	columnCards   = "srs_cards"
	columnSession = "srs_session"
	columnStreak  = "srs_streak"
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type Options struct {
	BaseURL       string
	APIKey        string
	LearnerID     string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	Logger        *slog.Logger
}

type Client struct {
	httpClient    *resty.Client
	learnerID     string
	retryAttempts uint
	retryDelay    time.Duration
	logger        *slog.Logger
}

var _ store.Store = (*Client)(nil)

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("remote base url is required")
	}
	if opts.LearnerID == "" {
		return nil, errors.New("learner id is required")
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/"))
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+opts.APIKey)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &Client{
		httpClient:    client,
		learnerID:     opts.LearnerID,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
		logger:        opts.Logger,
	}, nil
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

func (client *Client) LoadCards(ctx context.Context) ([]srs.Card, error) {
	body, found, err := client.get(ctx, columnCards)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var cards []srs.Card
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", columnCards, err)
	}
	return cards, nil
}

func (client *Client) SaveCards(ctx context.Context, cards []srs.Card) error {
	if cards == nil {
		cards = []srs.Card{}
	}
	return client.put(ctx, columnCards, cards)
}

func (client *Client) LoadSession(ctx context.Context) (srs.Session, error) {
	return loadLenient[srs.Session](ctx, client, columnSession)
}

func (client *Client) SaveSession(ctx context.Context, session srs.Session) error {
	return client.put(ctx, columnSession, session)
}

func (client *Client) LoadStreak(ctx context.Context) (srs.Streak, error) {
	return loadLenient[srs.Streak](ctx, client, columnStreak)
}

func (client *Client) SaveStreak(ctx context.Context, streak srs.Streak) error {
	return client.put(ctx, columnStreak, streak)
}

// loadLenient decodes a document, treating an undecodable one as absent.
func loadLenient[T any](ctx context.Context, client *Client, column string) (T, error) {
	var zero T
	body, found, err := client.get(ctx, column)
	if err != nil || !found {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		client.logger.Warn("ignoring malformed remote document", "column", column, "error", err)
		return zero, nil
	}
	return v, nil
}

func (client *Client) get(ctx context.Context, column string) ([]byte, bool, error) {
	var (
		body  []byte
		found bool
	)
	err := client.do(ctx, func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetPathParam("learner", client.learnerID).
			SetPathParam("column", column).
			Get("/learners/{learner}/{column}")
		if err != nil {
			return fmt.Errorf("httpClient.Get > %w", err)
		}
		switch {
		case response.StatusCode() == http.StatusNotFound, response.StatusCode() == http.StatusNoContent:
			found = false
			return nil
		case response.IsError():
			return &StatusError{StatusCode: response.StatusCode(), Body: response.String()}
		}

		text := strings.TrimSpace(response.String())
		found = text != "" && text != "null"
		body = []byte(text)
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", column, err)
	}
	return body, found, nil
}

func (client *Client) put(ctx context.Context, column string, data any) error {
	err := client.do(ctx, func() error {
		response, err := client.httpClient.R().
			SetContext(ctx).
			SetPathParam("learner", client.learnerID).
			SetPathParam("column", column).
			SetBody(data).
			Put("/learners/{learner}/{column}")
		if err != nil {
			return fmt.Errorf("httpClient.Put > %w", err)
		}
		if response.IsError() {
			return &StatusError{StatusCode: response.StatusCode(), Body: response.String()}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", column, err)
	}
	return nil
}

// do runs fn with exponential back-off. Client errors other than 429 are not retried.
func (client *Client) do(ctx context.Context, fn func() error) error {
	return retry.Do(
		func() error {
			err := fn()
			if err == nil {
				return nil
			}
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.retryable() {
				return retry.Unrecoverable(err)
			}
			if ctx.Err() != nil {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(client.retryAttempts+1),
		retry.Delay(client.retryDelay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			client.logger.Debug("retrying remote request", "attempt", n+1, "error", err)
		}),
	)
}
