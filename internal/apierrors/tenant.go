package apierrors

import "net/http"

// TenantAccessDeniedMessage is the fail-closed rejection: a verified identity
// with no matching tenant record.
func TenantAccessDeniedMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    ForbiddenErr,
		Message: "No tenant is provisioned for this identity",
		Status:  http.StatusForbidden,
	}}
}

func UnauthenticatedMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    UnauthorizedErr,
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}}
}

func OnboardingDisabledMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    ForbiddenErr,
		Message: "Self onboarding is disabled",
		Status:  http.StatusForbidden,
	}}
}

func WebhookUnauthorizedMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    UnauthorizedErr,
		Message: "Webhook signature missing or invalid",
		Status:  http.StatusUnauthorized,
	}}
}

func WebhookMalformedMessage() ErrorMessage {
	return ErrorMessage{Error: DetailedError{
		Code:    ValidationErr,
		Message: "Webhook payload does not parse",
		Status:  http.StatusBadRequest,
	}}
}
