package services

import "github.com/openagora/agora/backend/pkg/response"

// AuthorizeMutation permits a content mutation only when the content's
// owner is the session's active Owner. There is no implicit elevation:
// an organization OWNER editing content held by a different Owner of the
// same organization is still Forbidden.
func AuthorizeMutation(sc *SessionContext, contentOwnerID uint) error {
	if sc == nil {
		return response.NewUnauthorized("no session")
	}
	if sc.ActiveOwnerID != contentOwnerID {
		return response.NewForbidden("content belongs to a different owner")
	}
	return nil
}
