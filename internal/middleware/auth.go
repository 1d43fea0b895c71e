package middleware

import (
	"net/http"

	"contipay-be/internal/auth"
	"contipay-be/internal/logger"
	"contipay-be/internal/utils"

	"go.uber.org/zap"
)

// ServiceAuth admits only requests carrying a valid store-backend token
// signed with secret.
func ServiceAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := auth.VerifyServiceToken(auth.ExtractAccessToken(r), secret)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("service token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := utils.WithServiceSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
