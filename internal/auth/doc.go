// Package auth provides credential management and session authentication
// for the membership portal.
//
// It has four cooperating pieces:
//
//   - Hasher: one-way scrypt password hashing with constant-time
//     verification. Credentials are encoded as "<key-hex>.<salt-hex>" with a
//     fresh salt per hash.
//   - Manager: the session token lifecycle (Issue/Resolve/Revoke) over a
//     pluggable TokenStore. Tokens are opaque 32-byte random values; the
//     cookie value is HMAC-signed with the session secret. Sessions live 30
//     days from issuance with no sliding refresh.
//   - Service: the register/login/logout/change-password flows, built on the
//     hasher, the manager and the user store.
//   - Middleware: per-request identity resolution plus the RequireAuth and
//     RequireAdmin route gates.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # Required in production
//	AUTH_SESSION_LIFETIME=720h          # 30 days
//	AUTH_SECURE_COOKIES=true            # Forced on in production
//	AUTH_CSRF_ENABLED=false             # Browser deployments only
//	AUTH_SCRYPT_N=32768                 # KDF cost
//
// # Usage
//
//	hasher := auth.NewHasher(auth.DefaultScryptParams)
//	sessions, _ := auth.NewManager(store, userRepo, secret, lifetime, secure)
//	service, _ := auth.NewService(userRepo, hasher, sessions)
//	router.Use(auth.NewMiddleware(sessions).Handler())
//	auth.NewController(service, sessions, auditor).RegisterRoutes(router)
package auth
