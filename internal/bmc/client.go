// Package bmc talks to the managed server's out-of-band controller
// (iDRAC-style Redfish API) over HTTPS.
package bmc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PowerState is a snapshot read back from the controller. It is never
// cached; every read goes to the controller.
type PowerState string

const (
	StateOn      PowerState = "On"
	StateOff     PowerState = "Off"
	StateUnknown PowerState = "Unknown"
)

// PowerAction is a Redfish ComputerSystem.Reset type.
type PowerAction string

const (
	ActionOn               PowerAction = "On"
	ActionForceOff         PowerAction = "ForceOff"
	ActionGracefulShutdown PowerAction = "GracefulShutdown"
)

var (
	// ErrUnreachable covers dial failures and request timeouts.
	ErrUnreachable = errors.New("controller unreachable")
	// ErrAuthFailed means the controller rejected the configured
	// credentials; an operator problem, not a user one.
	ErrAuthFailed = errors.New("controller rejected credentials")
	// ErrProtocol covers unexpected statuses and response shapes.
	ErrProtocol = errors.New("unexpected controller response")
)

const (
	systemPath = "/redfish/v1/Systems/System.Embedded.1"
	resetPath  = systemPath + "/Actions/ComputerSystem.Reset"
)

// Client issues authenticated requests against a single controller.
// Credentials are fixed at construction; no refresh, no retries.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	logger   zerolog.Logger
}

// New builds a client for the controller at baseURL. Certificate
// verification is disabled on this client's transport only: BMCs ship
// with self-signed certificates, and the trust decision is scoped here
// rather than weakening process-wide TLS.
func New(baseURL, username, password string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger.With().Str("component", "bmc").Logger(),
	}
}

// PowerState reads the current power state from the controller's system
// resource.
func (c *Client) PowerState(ctx context.Context) (PowerState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+systemPath, nil)
	if err != nil {
		return StateUnknown, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return StateUnknown, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()
	if err := c.checkStatus(res, http.StatusOK); err != nil {
		return StateUnknown, err
	}
	var body struct {
		PowerState string `json:"PowerState"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return StateUnknown, fmt.Errorf("%w: decode system resource: %v", ErrProtocol, err)
	}
	switch body.PowerState {
	case "On":
		return StateOn, nil
	case "Off":
		return StateOff, nil
	case "":
		return StateUnknown, fmt.Errorf("%w: system resource missing PowerState", ErrProtocol)
	default:
		// Transitional states (PoweringOn, Resetting, ...) surface as Unknown.
		return StateUnknown, nil
	}
}

// SendPowerAction invokes ComputerSystem.Reset with the given reset type.
// The controller acks before the transition completes; callers must not
// assume the state already changed.
func (c *Client) SendPowerAction(ctx context.Context, action PowerAction) error {
	payload, err := json.Marshal(map[string]string{"ResetType": string(action)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+resetPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info().Str("action", string(action)).Msg("sending power command")
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()
	return c.checkStatus(res, http.StatusOK, http.StatusNoContent)
}

func (c *Client) checkStatus(res *http.Response, acceptable ...int) error {
	for _, code := range acceptable {
		if res.StatusCode == code {
			return nil
		}
	}
	detail, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	switch res.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.Error().Int("status", res.StatusCode).Msg("controller auth failed; check configured credentials")
		return fmt.Errorf("%w: http %d", ErrAuthFailed, res.StatusCode)
	default:
		c.logger.Error().Int("status", res.StatusCode).Bytes("body", detail).Msg("controller returned unexpected status")
		return fmt.Errorf("%w: http %d", ErrProtocol, res.StatusCode)
	}
}
