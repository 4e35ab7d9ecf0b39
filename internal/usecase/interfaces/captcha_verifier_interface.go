package interfaces

import "context"

//go:generate mockgen -source=captcha_verifier_interface.go -destination=mocks/captcha_verifier_interface_mock.go -package=mock_interfaces

// ICaptchaVerifier checks a human-verification challenge response with the
// third-party service. A non-nil error means the service could not be consulted.
type ICaptchaVerifier interface {
	Verify(ctx context.Context, challengeResponse, remoteIP string) (accepted bool, err error)
}
