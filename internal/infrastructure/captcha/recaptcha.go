package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinic_api/internal/usecase/interfaces"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var ErrMissingSecret = errors.New("missing RECAPTCHA_SECRET_KEY")

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	Action     string   `json:"action,omitempty"`
	Hostname   string   `json:"hostname,omitempty"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// RecaptchaVerifier checks challenge responses against Google's siteverify API.
//
// v2 responses are accepted on success alone; v3 responses also need a score of
// at least MinScore.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	minScore  float64
	client    *http.Client
}

var _ interfaces.ICaptchaVerifier = (*RecaptchaVerifier)(nil)

func NewRecaptchaVerifier(secret, verifyURL string, minScore float64, timeout time.Duration) (*RecaptchaVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		minScore:  minScore,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, challengeResponse, remoteIP string) (bool, error) {
	if challengeResponse == "" {
		return false, nil
	}
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", challengeResponse)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("[captcha][recaptcha] siteverify unreachable")
		return false, fmt.Errorf("siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Error().Int("status", resp.StatusCode).Msg("[captcha][recaptcha] siteverify bad status")
		return false, fmt.Errorf("siteverify: unexpected status %d", resp.StatusCode)
	}

	var out siteVerifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return false, fmt.Errorf("siteverify: decode: %w", err)
	}
	if !out.Success {
		log.Info().Strs("error_codes", out.ErrorCodes).Msg("[captcha][recaptcha] challenge rejected")
		return false, nil
	}
	if out.Score != nil && *out.Score < v.minScore {
		log.Info().Float64("score", *out.Score).Msg("[captcha][recaptcha] score below threshold")
		return false, nil
	}
	return true, nil
}
