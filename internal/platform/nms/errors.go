package nms

import "errors"

// One sentinel per remote failure category. The platform does not distinguish
// expired from invalid refresh tokens, so both surface as ErrTokenRefresh.
var (
	ErrAuthenticationFailed = errors.New("nms: authentication failed")
	ErrTokenRefresh         = errors.New("nms: token refresh failed")
	ErrRemoteCreate         = errors.New("nms: subscription create failed")
	ErrRemoteUpdate         = errors.New("nms: subscription update failed")
	ErrRemoteDelete         = errors.New("nms: subscription delete failed")
)
