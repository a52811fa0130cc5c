package domain

type CtxKey string

const (
	KeyRequestID  CtxKey = "RequestID"
	KeyAdminEmail CtxKey = "AdminEmail"
	KeyTokenExp   CtxKey = "TokenExpiresAt"
)
